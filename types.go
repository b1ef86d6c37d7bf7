package nodesearch

import (
	"context"

	dombatch "github.com/kailas-cloud/nodesearch/internal/domain/batch"
	"github.com/kailas-cloud/nodesearch/internal/domain/entity"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/query"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/result"
	entityrepo "github.com/kailas-cloud/nodesearch/internal/repository/entity"
	batchuc "github.com/kailas-cloud/nodesearch/internal/usecase/batch"
	contributoruc "github.com/kailas-cloud/nodesearch/internal/usecase/contributor"
	healthuc "github.com/kailas-cloud/nodesearch/internal/usecase/health"
)

// Entities the index is built from.
type (
	Node     = entity.Node
	User     = entity.User
	Tag      = entity.Tag
	Job      = entity.Job
	School   = entity.School
	WikiPage = entity.WikiPage
)

// Query DSL.
type (
	Query      = query.Query
	BoolFilter = query.BoolFilter
	Clause     = query.Clause
	SortField  = query.SortField
)

// Search results.
type (
	Response        = result.Response
	NodeResult      = result.NodeResult
	UserResult      = result.UserResult
	TagBucket       = result.TagBucket
	Contributor     = result.Contributor
	ContributorPage = result.ContributorPage
)

// Typeahead.
type (
	ContributorRequest = contributoruc.Request
	ContributorConfig  = contributoruc.Config
)

// Bulk reindex and health.
type (
	ReindexReport = batchuc.Report
	ItemResult    = dombatch.Result
	HealthReport  = healthuc.Report
)

// NewQuery builds a filtered query_string query.
func NewQuery(queryString string) *Query { return query.New(queryString) }

// NewFilteredQuery builds a filter-only query.
func NewFilteredQuery(filter BoolFilter) *Query { return query.NewFiltered(filter) }

// EntityStore loads canonical entities by id.
type EntityStore interface {
	LoadNode(ctx context.Context, id string) (*Node, error)
	LoadUser(ctx context.Context, id string) (*User, error)
	LoadWikiPage(ctx context.Context, id string) (*WikiPage, error)
	ProjectsInCommon(ctx context.Context, userID, otherID string) (int, error)
	ListNodeIDs(ctx context.Context) ([]string, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// MemoryStore is an in-process EntityStore.
type MemoryStore = entityrepo.Memory

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return entityrepo.NewMemory() }
