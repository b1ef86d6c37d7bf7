// Package nodesearch keeps a search index of projects, components,
// registrations and users in step with a canonical entity store, and serves
// faceted search and contributor typeahead over it.
package nodesearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nodesearch/internal/config"
	"github.com/kailas-cloud/nodesearch/internal/db"
	dbBleve "github.com/kailas-cloud/nodesearch/internal/db/bleve"
	dbRedis "github.com/kailas-cloud/nodesearch/internal/db/redis"
	"github.com/kailas-cloud/nodesearch/internal/gateway"
	batchuc "github.com/kailas-cloud/nodesearch/internal/usecase/batch"
	contributoruc "github.com/kailas-cloud/nodesearch/internal/usecase/contributor"
	healthuc "github.com/kailas-cloud/nodesearch/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/nodesearch/internal/usecase/indexing"
	lifecycleuc "github.com/kailas-cloud/nodesearch/internal/usecase/lifecycle"
	searchuc "github.com/kailas-cloud/nodesearch/internal/usecase/search"
)

const (
	// DefaultIndexName is the index used when WithIndexName is not given.
	DefaultIndexName        = "website"
	defaultReadinessTimeout = 10 * time.Second
)

var errUnknownDriver = errors.New("nodesearch: unknown driver")

// Client is the nodesearch SDK entry point. It is safe for concurrent use.
type Client struct {
	name     string
	gateway  *gateway.Gateway
	entities EntityStore

	indexing     *indexinguc.Service
	search       *searchuc.Service
	contributors *contributoruc.Service
	lifecycle    *lifecycleuc.Service
	batch        *batchuc.Service
	health       *healthuc.Service
}

// New creates a Client. A backend that cannot be reached, either when it is
// built or within the readiness timeout, leaves the client degraded: reads
// return empty results and writes are dropped, but New still succeeds. Only
// an unknown driver is an error.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:           config.DriverBleve,
		indexName:        DefaultIndexName,
		readinessTimeout: defaultReadinessTimeout,
		workers:          batchuc.DefaultWorkers,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.entities == nil {
		cfg.entities = NewMemoryStore()
	}

	var gw *gateway.Gateway
	backend, err := createBackend(cfg)
	switch {
	case errors.Is(err, errUnknownDriver):
		return nil, err
	case err != nil:
		gw = gateway.Disabled(cfg.logger, err)
	default:
		gw = gateway.New(context.Background(), backend, cfg.logger, cfg.readinessTimeout)
	}

	return wireClient(gw, cfg)
}

func createBackend(cfg *clientConfig) (db.Backend, error) {
	switch cfg.driver {
	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("nodesearch: create redis store: %w", err)
		}
		return s, nil
	case config.DriverBleve:
		s, err := dbBleve.NewStore(dbBleve.Config{Path: cfg.blevePath})
		if err != nil {
			return nil, fmt.Errorf("nodesearch: create bleve store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w %q", errUnknownDriver, cfg.driver)
	}
}

func wireClient(gw *gateway.Gateway, cfg *clientConfig) (*Client, error) {
	indexing := indexinguc.New(gw, cfg.entities, cfg.indexName, cfg.logger)

	batch, err := batchuc.New(indexing, cfg.entities, cfg.workers, cfg.logger)
	if err != nil {
		gw.Close()
		return nil, fmt.Errorf("nodesearch: create reindex pool: %w", err)
	}
	if cfg.maxBatchSize > 0 {
		batch = batch.WithMaxBatchSize(cfg.maxBatchSize)
	}

	return &Client{
		name:         cfg.indexName,
		gateway:      gw,
		entities:     cfg.entities,
		indexing:     indexing,
		search:       searchuc.New(gw, cfg.entities, cfg.logger),
		contributors: contributoruc.New(gw, cfg.entities, cfg.indexName, cfg.contributors, cfg.logger),
		lifecycle:    lifecycleuc.New(gw, cfg.indexName, cfg.logger),
		batch:        batch,
		health:       healthuc.New(gw, cfg.entities),
	}, nil
}

// Close releases the reindex pool and the backend.
func (c *Client) Close() {
	c.batch.Close()
	c.gateway.Close()
}

// Available reports whether the search backend is reachable.
func (c *Client) Available() bool { return c.gateway.Available() }

// Health checks the backend and the entity store.
func (c *Client) Health(ctx context.Context) HealthReport { return c.health.Check(ctx) }

// CreateIndex creates the index with the node and user mappings.
// An index that already exists is left alone.
func (c *Client) CreateIndex(ctx context.Context) error {
	if err := c.lifecycle.CreateIndex(ctx); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// DeleteIndex drops the index and every document in it. A missing index
// is not an error.
func (c *Client) DeleteIndex(ctx context.Context) error {
	if err := c.lifecycle.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	return nil
}

// SyncNode indexes a public node and removes a private or deleted one.
func (c *Client) SyncNode(ctx context.Context, node *Node) error {
	return c.indexing.SyncNode(ctx, node)
}

// SyncUser indexes an active user and removes any other.
func (c *Client) SyncUser(ctx context.Context, user *User) error {
	return c.indexing.SyncUser(ctx, user)
}

// DeleteNode removes the document of node from the index.
func (c *Client) DeleteNode(ctx context.Context, node *Node) error {
	return c.indexing.DeleteDocument(ctx, node)
}

// SyncNodeByID loads a node from the entity store and syncs it.
func (c *Client) SyncNodeByID(ctx context.Context, id string) error {
	return c.indexing.SyncNodeByID(ctx, id)
}

// SyncUserByID loads a user from the entity store and syncs it.
func (c *Client) SyncUserByID(ctx context.Context, id string) error {
	return c.indexing.SyncUserByID(ctx, id)
}

// Reindex resyncs the given nodes and users. Results are in input order.
func (c *Client) Reindex(ctx context.Context, nodeIDs, userIDs []string) ReindexReport {
	return ReindexReport{
		Nodes: c.batch.Nodes(ctx, nodeIDs),
		Users: c.batch.Users(ctx, userIDs),
	}
}

// ReindexAll resyncs every entity in the entity store.
func (c *Client) ReindexAll(ctx context.Context) (ReindexReport, error) {
	return c.batch.All(ctx)
}

// Search runs a faceted search. searchType is a comma separated list of
// kinds; empty searches all of them.
func (c *Client) Search(ctx context.Context, q *Query, searchType string) (*Response, error) {
	return c.search.Search(ctx, q, c.name, searchType)
}

// SearchContributors runs a contributor typeahead lookup.
func (c *Client) SearchContributors(ctx context.Context, req ContributorRequest) (*ContributorPage, error) {
	return c.contributors.Search(ctx, req)
}
