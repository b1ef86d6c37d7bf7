package chi

import (
	"context"

	dombatch "github.com/kailas-cloud/nodesearch/internal/domain/batch"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/query"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/result"
	batchuc "github.com/kailas-cloud/nodesearch/internal/usecase/batch"
	contributoruc "github.com/kailas-cloud/nodesearch/internal/usecase/contributor"
	healthuc "github.com/kailas-cloud/nodesearch/internal/usecase/health"
)

// Searcher serves faceted search.
type Searcher interface {
	Search(ctx context.Context, q *query.Query, index, searchType string) (*result.Response, error)
}

// Contributors serves contributor typeahead.
type Contributors interface {
	Search(ctx context.Context, req contributoruc.Request) (*result.ContributorPage, error)
}

// Syncer pushes one entity into the index.
type Syncer interface {
	SyncNodeByID(ctx context.Context, id string) error
	SyncUserByID(ctx context.Context, id string) error
}

// Reindexer resyncs entities in bulk.
type Reindexer interface {
	Nodes(ctx context.Context, ids []string) []dombatch.Result
	Users(ctx context.Context, ids []string) []dombatch.Result
	All(ctx context.Context) (batchuc.Report, error)
}

// Lifecycle creates and drops the index.
type Lifecycle interface {
	CreateIndex(ctx context.Context) error
	DeleteAll(ctx context.Context) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
