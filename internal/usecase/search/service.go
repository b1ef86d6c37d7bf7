package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/nodesearch/internal/db"
	"github.com/kailas-cloud/nodesearch/internal/domain/category"
	"github.com/kailas-cloud/nodesearch/internal/domain/document"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/query"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/result"
)

// AllTypes selects every document kind.
const AllTypes = "_all"

const (
	tagCloudAgg   = "tag_cloud"
	tagCloudField = "tags"
)

// Service answers faceted search: per-kind counts, a tag cloud and the
// formatted hits of one query.
type Service struct {
	index  Index
	nodes  Nodes
	logger *zap.Logger
}

// New creates a search service.
func New(index Index, nodes Nodes, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, nodes: nodes, logger: logger}
}

// Search runs q against index. searchType is a comma separated list of
// kinds; empty or "_all" searches every kind. Count and tag failures are
// absorbed; a failing hits query is returned as is.
func (s *Service) Search(ctx context.Context, q *query.Query, index, searchType string) (*result.Response, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var (
		counts map[string]int
		tags   []result.TagBucket
		hits   *db.SearchResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts = s.counts(gctx, q.Clone(), index)
		return nil
	})
	g.Go(func() error {
		tags = s.tags(gctx, q.Clone(), index)
		return nil
	})
	g.Go(func() error {
		res, err := s.index.Search(gctx, index, parseTypes(searchType), q)
		if err != nil {
			return fmt.Errorf("search hits: %w", err)
		}
		hits = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &result.Response{
		Results:     s.format(ctx, hits.Hits),
		Counts:      counts,
		Tags:        tags,
		TypeAliases: category.TypeAliases(),
	}, nil
}

func parseTypes(searchType string) []string {
	if searchType == "" || searchType == AllTypes {
		return nil
	}
	var kinds []string
	for _, k := range strings.Split(searchType, ",") {
		if k = strings.TrimSpace(k); k != "" {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// counts runs one count per kind concurrently. A failing kind counts 0.
func (s *Service) counts(ctx context.Context, q *query.Query, index string) map[string]int {
	q.StripCategory()
	q.StripPagination()

	var (
		mu     sync.Mutex
		counts = make(map[string]int, len(category.Kinds)+1)
		wg     sync.WaitGroup
	)
	for _, kind := range category.Kinds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.index.Count(ctx, index, []string{kind.String()}, q)
			if err != nil {
				s.logger.Warn("Count failed, reporting zero",
					zap.String("kind", kind.String()), zap.Error(err))
				n = 0
			}
			mu.Lock()
			counts[kind.Alias()] = n
			mu.Unlock()
		}()
	}
	wg.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	counts[result.CountTotal] = total
	return counts
}

// tags aggregates the tag cloud over every kind.
func (s *Service) tags(ctx context.Context, q *query.Query, index string) []result.TagBucket {
	q.StripPagination()
	q.WithPage(0, 0)
	q.AddTermsAggregation(tagCloudAgg, tagCloudField)

	res, err := s.index.Search(ctx, index, nil, q)
	if err != nil {
		s.logger.Warn("Tag cloud failed, reporting none", zap.Error(err))
		return []result.TagBucket{}
	}
	buckets := res.Aggregations[tagCloudAgg]
	out := make([]result.TagBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, result.TagBucket{Key: b.Key, DocCount: b.Count})
	}
	return out
}

// format turns raw hits into response entries. Parent lookups are shared
// across the hits of one response.
func (s *Service) format(ctx context.Context, hits []db.Hit) []any {
	parents := make(map[string]*result.ParentInfo)
	out := make([]any, 0, len(hits))
	for _, h := range hits {
		out = append(out, s.formatHit(ctx, h, parents))
	}
	return out
}

func (s *Service) formatHit(ctx context.Context, h db.Hit, parents map[string]*result.ParentInfo) any {
	kind := category.Category(h.Kind)
	switch {
	case kind == category.User:
		var doc document.UserDocument
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			s.logger.Warn("Undecodable user hit, passing through", zap.String("id", h.ID), zap.Error(err))
			return h.Source
		}
		return result.FormatUser(&doc)
	case isNodeKind(kind):
		var doc document.NodeDocument
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			s.logger.Warn("Undecodable node hit, passing through", zap.String("id", h.ID), zap.Error(err))
			return h.Source
		}
		return result.FormatNode(&doc, s.parent(ctx, doc.ParentID, parents))
	default:
		return h.Source
	}
}

func isNodeKind(c category.Category) bool {
	for _, k := range category.NodeKinds {
		if c == k {
			return true
		}
	}
	return false
}

// parent resolves the privacy-filtered summary of a parent node. A node
// without a parent id yields nil. A parent that cannot be loaded, is
// deleted or is private yields the placeholder.
func (s *Service) parent(ctx context.Context, id *string, memo map[string]*result.ParentInfo) *result.ParentInfo {
	if id == nil || *id == "" {
		return nil
	}
	if p, ok := memo[*id]; ok {
		return p
	}

	var info *result.ParentInfo
	node, err := s.nodes.LoadNode(ctx, *id)
	switch {
	case err != nil:
		s.logger.Warn("Parent node not loadable, redacting", zap.String("parent_id", *id), zap.Error(err))
		info = result.PrivateParent()
	case node.IsDeleted || !node.IsPublic:
		info = result.PrivateParent()
	default:
		info = result.PublicParent(node.ID, node.Title, node.URL(), node.IsRegistration)
	}
	memo[*id] = info
	return info
}
