package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nodesearch/internal/config"
	"github.com/kailas-cloud/nodesearch/internal/db"
	dbBleve "github.com/kailas-cloud/nodesearch/internal/db/bleve"
	dbRedis "github.com/kailas-cloud/nodesearch/internal/db/redis"
	"github.com/kailas-cloud/nodesearch/internal/domain/entity"
	"github.com/kailas-cloud/nodesearch/internal/gateway"
	logpkg "github.com/kailas-cloud/nodesearch/internal/logger"
	"github.com/kailas-cloud/nodesearch/internal/metrics"
	entityrepo "github.com/kailas-cloud/nodesearch/internal/repository/entity"
	batchuc "github.com/kailas-cloud/nodesearch/internal/usecase/batch"
	contributoruc "github.com/kailas-cloud/nodesearch/internal/usecase/contributor"
	healthuc "github.com/kailas-cloud/nodesearch/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/nodesearch/internal/usecase/indexing"
	lifecycleuc "github.com/kailas-cloud/nodesearch/internal/usecase/lifecycle"
	searchuc "github.com/kailas-cloud/nodesearch/internal/usecase/search"
)

// entityStore is what the use cases need from the canonical entity store.
type entityStore interface {
	LoadNode(ctx context.Context, id string) (*entity.Node, error)
	LoadUser(ctx context.Context, id string) (*entity.User, error)
	LoadWikiPage(ctx context.Context, id string) (*entity.WikiPage, error)
	ProjectsInCommon(ctx context.Context, userID, otherID string) (int, error)
	ListNodeIDs(ctx context.Context) ([]string, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// app is the composition root shared by every subcommand.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	gateway  *gateway.Gateway
	entities entityStore
	closers  []func()

	indexing     *indexinguc.Service
	search       *searchuc.Service
	contributors *contributoruc.Service
	lifecycle    *lifecycleuc.Service
	batch        *batchuc.Service
	health       *healthuc.Service
}

func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterBackendMetrics()
	metrics.RegisterHTTPMetrics()

	a := &app{env: env, cfg: cfg, logger: logger}
	readiness := time.Duration(cfg.Backend.ReadinessTimeout) * time.Second

	backend, err := openBackend(cfg.Backend)
	if err != nil {
		a.gateway = gateway.Disabled(logger, err)
	} else {
		a.gateway = gateway.New(ctx, backend, logger, readiness)
	}
	a.closers = append(a.closers, a.gateway.Close)

	if cfg.Entities.DSN == "" {
		logger.Warn("No entities DSN configured, using an empty in-memory entity store")
		a.entities = entityrepo.NewMemory()
	} else {
		pg, err := entityrepo.Open(ctx, entityrepo.Config{
			DSN:          cfg.Entities.DSN,
			MaxOpenConns: cfg.Entities.MaxOpenConns,
			MaxIdleConns: cfg.Entities.MaxIdleConns,
			PingTimeout:  readiness,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open entity store: %w", err)
		}
		a.entities = pg
		a.closers = append(a.closers, func() { _ = pg.Close() })
	}

	name := cfg.Backend.IndexName
	a.indexing = indexinguc.New(a.gateway, a.entities, name, logger)
	a.search = searchuc.New(a.gateway, a.entities, logger)
	a.contributors = contributoruc.New(a.gateway, a.entities, name, contributoruc.Config{
		DefaultSize:  cfg.Search.DefaultPageSize,
		MaxSize:      cfg.Search.MaxPageSize,
		GravatarSize: cfg.Search.GravatarSize,
	}, logger)
	a.lifecycle = lifecycleuc.New(a.gateway, name, logger)
	a.health = healthuc.New(a.gateway, a.entities)

	a.batch, err = batchuc.New(a.indexing, a.entities, cfg.Reindex.Workers, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create reindex pool: %w", err)
	}
	a.batch.WithMaxBatchSize(cfg.Reindex.MaxBatchSize)
	a.closers = append(a.closers, a.batch.Close)

	return a, nil
}

func openBackend(cfg config.BackendConfig) (db.Backend, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverBleve:
		return dbBleve.NewStore(dbBleve.Config{Path: cfg.BlevePath})
	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Driver)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}
