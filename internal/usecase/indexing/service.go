package indexing

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nodesearch/internal/domain"
	"github.com/kailas-cloud/nodesearch/internal/domain/category"
	"github.com/kailas-cloud/nodesearch/internal/domain/document"
	"github.com/kailas-cloud/nodesearch/internal/domain/entity"
	"github.com/kailas-cloud/nodesearch/internal/gateway"
)

// Service keeps index documents in step with entity state. Every call
// recomputes the document from scratch, so repeating a call is harmless.
type Service struct {
	index    Index
	entities Entities
	name     string
	logger   *zap.Logger
}

// New creates an indexing service writing to the index called name.
func New(index Index, entities Entities, name string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, entities: entities, name: name, logger: logger}
}

// SyncNode indexes a public, live node and removes any other node.
// Orphaned components are skipped.
func (s *Service) SyncNode(ctx context.Context, node *entity.Node) error {
	if node.IsDeleted || !node.IsPublic {
		return s.DeleteDocument(ctx, node)
	}

	doc, err := document.FromNode(node, s.resolveWikis(ctx, node))
	if errors.Is(err, domain.ErrOrphaned) {
		s.logger.Info("Skipping orphaned node", zap.String("node_id", node.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("build node document %s: %w", node.ID, err)
	}

	if err := s.index.Put(ctx, s.name, doc); err != nil {
		return fmt.Errorf("index node %s: %w", node.ID, err)
	}
	return nil
}

// resolveWikis loads the current version of every wiki page. Pages that
// fail to load are left out.
func (s *Service) resolveWikis(ctx context.Context, node *entity.Node) []*entity.WikiPage {
	if len(node.WikiPagesCurrent) == 0 {
		return nil
	}
	names := make([]string, 0, len(node.WikiPagesCurrent))
	for name := range node.WikiPagesCurrent {
		names = append(names, name)
	}
	slices.Sort(names)

	pages := make([]*entity.WikiPage, 0, len(names))
	for _, name := range names {
		id := node.WikiPagesCurrent[name]
		page, err := s.entities.LoadWikiPage(ctx, id)
		if err != nil {
			s.logger.Warn("Skipping unresolved wiki page",
				zap.String("node_id", node.ID), zap.String("page", name), zap.String("page_id", id), zap.Error(err))
			continue
		}
		pages = append(pages, page)
	}
	return pages
}

// DeleteDocument removes the document of node. A document that is already
// gone is not an error.
func (s *Service) DeleteDocument(ctx context.Context, node *entity.Node) error {
	kind := category.Resolve(node.Category, node.IsRegistration)
	err := s.index.Delete(ctx, s.name, kind.String(), node.ID)
	if gateway.IsNotFound(err) {
		s.logger.Warn("Node document not in index",
			zap.String("node_id", node.ID), zap.String("kind", kind.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete node document %s: %w", node.ID, err)
	}
	return nil
}

// SyncUser indexes an active user and removes any other user.
func (s *Service) SyncUser(ctx context.Context, user *entity.User) error {
	if !user.Active() {
		err := s.index.Delete(ctx, s.name, category.User.String(), user.ID)
		if gateway.IsNotFound(err) {
			s.logger.Error("User document not in index", zap.String("user_id", user.ID), zap.Error(err))
			return nil
		}
		if err != nil {
			return fmt.Errorf("delete user document %s: %w", user.ID, err)
		}
		return nil
	}

	doc, err := document.FromUser(user)
	if err != nil {
		return fmt.Errorf("build user document %s: %w", user.ID, err)
	}
	if err := s.index.Put(ctx, s.name, doc); err != nil {
		return fmt.Errorf("index user %s: %w", user.ID, err)
	}
	return nil
}

// SyncNodeByID loads the node and syncs it.
func (s *Service) SyncNodeByID(ctx context.Context, id string) error {
	node, err := s.entities.LoadNode(ctx, id)
	if err != nil {
		return fmt.Errorf("load node: %w", err)
	}
	return s.SyncNode(ctx, node)
}

// SyncUserByID loads the user and syncs it.
func (s *Service) SyncUserByID(ctx context.Context, id string) error {
	user, err := s.entities.LoadUser(ctx, id)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	return s.SyncUser(ctx, user)
}
