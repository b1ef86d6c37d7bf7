package batch

import "context"

// Syncer re-derives the index document of one entity.
type Syncer interface {
	SyncNodeByID(ctx context.Context, id string) error
	SyncUserByID(ctx context.Context, id string) error
}

// Lister enumerates every entity in the canonical store.
type Lister interface {
	ListNodeIDs(ctx context.Context) ([]string, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}
