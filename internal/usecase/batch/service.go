package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nodesearch/internal/domain"
	dombatch "github.com/kailas-cloud/nodesearch/internal/domain/batch"
	"github.com/kailas-cloud/nodesearch/internal/metrics"
)

// MaxBatchSize is the maximum number of ids per reindex request.
const MaxBatchSize = 100

// DefaultWorkers is the worker pool size when none is configured.
const DefaultWorkers = 4

// Entity kinds reported in metrics.
const (
	kindNode = "node"
	kindUser = "user"
)

// Report is the outcome of a full reindex.
type Report struct {
	Nodes []dombatch.Result
	Users []dombatch.Result
}

// Failed counts the items that did not sync.
func (r Report) Failed() int { return dombatch.CountFailed(r.Nodes, r.Users) }

// Service resyncs entities in bulk on a bounded worker pool, with per-item
// error reporting.
type Service struct {
	sync         Syncer
	list         Lister
	pool         *ants.Pool
	maxBatchSize int
	logger       *zap.Logger
}

// New creates a batch service with the given number of workers.
func New(syncer Syncer, lister Lister, workers int, logger *zap.Logger) (*Service, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Service{
		sync: syncer, list: lister, pool: pool,
		maxBatchSize: MaxBatchSize, logger: logger,
	}, nil
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Close releases the worker pool.
func (s *Service) Close() {
	s.pool.Release()
}

// Nodes resyncs the given nodes.
func (s *Service) Nodes(ctx context.Context, ids []string) []dombatch.Result {
	if err := s.checkSize(ids); err != nil {
		return failAll(ids, err)
	}
	return s.run(ctx, kindNode, ids, s.sync.SyncNodeByID)
}

// Users resyncs the given users.
func (s *Service) Users(ctx context.Context, ids []string) []dombatch.Result {
	if err := s.checkSize(ids); err != nil {
		return failAll(ids, err)
	}
	return s.run(ctx, kindUser, ids, s.sync.SyncUserByID)
}

// All resyncs every node and user in the canonical store. It fails only
// when the entity ids cannot be listed.
func (s *Service) All(ctx context.Context) (Report, error) {
	nodes, err := s.list.ListNodeIDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list nodes: %w", err)
	}
	users, err := s.list.ListUserIDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list users: %w", err)
	}

	s.logger.Info("Reindex started", zap.Int("nodes", len(nodes)), zap.Int("users", len(users)))
	report := Report{
		Nodes: s.run(ctx, kindNode, nodes, s.sync.SyncNodeByID),
		Users: s.run(ctx, kindUser, users, s.sync.SyncUserByID),
	}
	s.logger.Info("Reindex finished",
		zap.Int("nodes", len(nodes)), zap.Int("users", len(users)), zap.Int("failed", report.Failed()))
	return report, nil
}

func (s *Service) checkSize(ids []string) error {
	if len(ids) > s.maxBatchSize {
		return fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrBatchTooLarge)
	}
	return nil
}

// run applies fn to every id on the pool. Results keep the order of ids.
func (s *Service) run(ctx context.Context, kind string, ids []string, fn func(context.Context, string) error) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = s.one(ctx, kind, id, fn)
		}
		if err := s.pool.Submit(task); err != nil {
			wg.Done()
			results[i] = s.record(kind, id, fmt.Errorf("submit: %w", err))
		}
	}
	wg.Wait()
	return results
}

func (s *Service) one(ctx context.Context, kind, id string, fn func(context.Context, string) error) dombatch.Result {
	if err := ctx.Err(); err != nil {
		return s.record(kind, id, err)
	}
	return s.record(kind, id, fn(ctx, id))
}

func (s *Service) record(kind, id string, err error) dombatch.Result {
	if err != nil {
		metrics.ReindexItemsTotal.WithLabelValues(kind, string(dombatch.StatusError)).Inc()
		s.logger.Warn("Reindex item failed", zap.String("kind", kind), zap.String("id", id), zap.Error(err))
		return dombatch.NewError(id, err)
	}
	metrics.ReindexItemsTotal.WithLabelValues(kind, string(dombatch.StatusOK)).Inc()
	return dombatch.NewOK(id)
}

func failAll(ids []string, err error) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))
	for i, id := range ids {
		results[i] = dombatch.NewError(id, err)
	}
	return results
}
