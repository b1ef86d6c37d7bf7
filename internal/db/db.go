package db

import (
	"context"
	"time"
)

// Backend is the search engine facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type Backend interface {
	Pinger
	IndexManager
	DocumentStore
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// UpdateRequest is a partial document update keyed by (index, kind, id).
// Doc is a JSON object merged into the stored document. With Upsert set,
// a missing document is created from Doc.
type UpdateRequest struct {
	Index  string
	Kind   string
	ID     string
	Doc    []byte
	Upsert bool
}

// DocumentStore provides document writes. Every write is visible to the
// next search when the call returns.
type DocumentStore interface {
	// Update merges a partial document. It returns ErrIndexNotFound when the
	// index does not exist and ErrDocumentNotFound when the document does
	// not exist and Upsert is not set.
	Update(ctx context.Context, req *UpdateRequest) error
	// Put creates or overwrites a whole document regardless of index state.
	Put(ctx context.Context, index, kind, id string, doc []byte) error
	// Delete removes a document. It returns ErrDocumentNotFound when there
	// is nothing to delete.
	Delete(ctx context.Context, index, kind, id string) error
}

// Searcher provides query operations.
type Searcher interface {
	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)
	Count(ctx context.Context, req *SearchRequest) (int, error)
}
