package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nodesearch/internal/db"
	"github.com/kailas-cloud/nodesearch/internal/domain/category"
	"github.com/kailas-cloud/nodesearch/internal/gateway"
)

// Schema returns the definition of the index called name. Tags are kept
// verbatim so the tag cloud and tag filters are case-sensitive.
func Schema(name string) (*db.IndexDefinition, error) {
	kinds := make([]string, 0, len(category.NodeKinds))
	for _, k := range category.NodeKinds {
		kinds = append(kinds, k.String())
	}
	return db.NewIndex(name).
		Kinds(kinds...).
		Keyword("id").
		Keyword("category").
		KeywordList("tags").
		Text("title").
		Text("description").
		TextList("contributors").
		Text("user").
		Text("job").
		Text("school").
		TextMap("wikis").
		Keyword("parent_id").
		Numeric("boost").Sortable().
		Date("iso_timestamp").Sortable().
		Build()
}

// Service creates and drops the search index.
type Service struct {
	index  Index
	name   string
	logger *zap.Logger
}

// New creates a lifecycle service for the index called name.
func New(index Index, name string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, name: name, logger: logger}
}

// CreateIndex creates the index. An index that already exists is left
// untouched.
func (s *Service) CreateIndex(ctx context.Context) error {
	def, err := Schema(s.name)
	if err != nil {
		return fmt.Errorf("index %s schema: %w", s.name, err)
	}
	err = s.index.CreateIndex(ctx, def)
	if errors.Is(err, db.ErrIndexExists) {
		s.logger.Debug("Index already exists", zap.String("index", s.name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("create index %s: %w", s.name, err)
	}
	s.logger.Info("Index created", zap.String("index", s.name))
	return nil
}

// DeleteAll drops the index with every document in it.
func (s *Service) DeleteAll(ctx context.Context) error {
	err := s.index.DeleteIndex(ctx, s.name)
	if gateway.IsNotFound(err) {
		s.logger.Error("Index was not deleted, it does not exist", zap.String("index", s.name), zap.Error(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete index %s: %w", s.name, err)
	}
	s.logger.Info("Index deleted", zap.String("index", s.name))
	return nil
}
