package contributor

import (
	"context"

	"github.com/kailas-cloud/nodesearch/internal/db"
	"github.com/kailas-cloud/nodesearch/internal/domain/entity"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/query"
)

// Index runs typeahead queries.
type Index interface {
	Search(ctx context.Context, index string, kinds []string, q *query.Query) (*db.SearchResult, error)
}

// Users loads live user state for each hit.
type Users interface {
	LoadUser(ctx context.Context, id string) (*entity.User, error)
	ProjectsInCommon(ctx context.Context, userID, otherID string) (int, error)
}
