package lifecycle

import (
	"context"

	"github.com/kailas-cloud/nodesearch/internal/db"
)

// Index manages the search index itself.
type Index interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DeleteIndex(ctx context.Context, name string) error
}
