package search

import (
	"context"

	"github.com/kailas-cloud/nodesearch/internal/db"
	"github.com/kailas-cloud/nodesearch/internal/domain/entity"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/query"
)

// Index runs queries against the search backend.
type Index interface {
	Search(ctx context.Context, index string, kinds []string, q *query.Query) (*db.SearchResult, error)
	Count(ctx context.Context, index string, kinds []string, q *query.Query) (int, error)
}

// Nodes loads parent nodes for result formatting.
type Nodes interface {
	LoadNode(ctx context.Context, id string) (*entity.Node, error)
}
