package indexing

import (
	"context"

	"github.com/kailas-cloud/nodesearch/internal/domain/document"
	"github.com/kailas-cloud/nodesearch/internal/domain/entity"
)

// Index writes documents to the search index.
type Index interface {
	Put(ctx context.Context, index string, doc document.Document) error
	Delete(ctx context.Context, index, kind, id string) error
}

// Entities loads live entity state from the canonical store.
type Entities interface {
	LoadNode(ctx context.Context, id string) (*entity.Node, error)
	LoadUser(ctx context.Context, id string) (*entity.User, error)
	LoadWikiPage(ctx context.Context, id string) (*entity.WikiPage, error)
}
