// Package gateway is the only path from the services to the search backend.
// It classifies backend failures and, when the backend never came up,
// answers every call with a neutral value instead of an error.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nodesearch/internal/db"
	"github.com/kailas-cloud/nodesearch/internal/domain/document"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/query"
	"github.com/kailas-cloud/nodesearch/internal/metrics"
)

// DefaultSize is the page size of a query that does not set one.
const DefaultSize = 10

// DefaultReadyTimeout bounds the readiness check in New.
const DefaultReadyTimeout = 5 * time.Second

// Operation names used in logs and metrics.
const (
	opSearch      = "search"
	opCount       = "count"
	opPut         = "put"
	opDelete      = "delete"
	opCreateIndex = "create_index"
	opDeleteIndex = "delete_index"
)

// Gateway wraps a db.Backend. It is safe for concurrent use and never
// changes after construction.
type Gateway struct {
	backend   db.Backend
	available bool
	logger    *zap.Logger
}

// New pings backend once. If it is not ready within readyTimeout the
// gateway stays unavailable for its whole lifetime.
func New(ctx context.Context, backend db.Backend, logger *zap.Logger, readyTimeout time.Duration) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if readyTimeout <= 0 {
		readyTimeout = DefaultReadyTimeout
	}
	if backend == nil {
		return Disabled(logger, errors.New("no backend configured"))
	}
	if err := backend.WaitForReady(ctx, readyTimeout); err != nil {
		logger.Error("Search backend not ready, running without search", zap.Error(err))
		return &Gateway{backend: backend, logger: logger}
	}
	return &Gateway{backend: backend, available: true, logger: logger}
}

// Disabled returns an unavailable gateway for a backend that could not be
// constructed.
func Disabled(logger *zap.Logger, reason error) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Error("Search backend disabled", zap.Error(reason))
	return &Gateway{logger: logger}
}

// Available reports whether calls reach the backend.
func (g *Gateway) Available() bool { return g.available }

// Ping checks the backend. Unlike the other calls it reports an
// unavailable gateway as ErrUnavailable.
func (g *Gateway) Ping(ctx context.Context) error {
	if !g.available {
		return ErrUnavailable
	}
	if err := g.backend.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the backend.
func (g *Gateway) Close() {
	if g.backend != nil {
		g.backend.Close()
	}
}

func (g *Gateway) degraded(op string, fields ...zap.Field) {
	metrics.BackendDegradedTotal.WithLabelValues(op).Inc()
	g.logger.Error("Search backend unavailable, returning empty result",
		append([]zap.Field{zap.String("op", op)}, fields...)...)
}

func (g *Gateway) observe(op, index string, started time.Time, err error) error {
	outcome := metrics.OutcomeOK
	cerr := classify(op, index, err)
	switch {
	case cerr == nil:
	case IsNotFound(cerr):
		outcome = metrics.OutcomeNotFound
	default:
		outcome = metrics.OutcomeError
	}
	metrics.ObserveBackend(op, outcome, started)
	return cerr
}

// Search runs q against the given kinds of index. No kinds means all kinds.
func (g *Gateway) Search(ctx context.Context, index string, kinds []string, q *query.Query) (*db.SearchResult, error) {
	if !g.available {
		g.degraded(opSearch, zap.String("index", index))
		return &db.SearchResult{Hits: []db.Hit{}, Aggregations: map[string][]db.Bucket{}}, nil
	}
	req := toRequest(index, kinds, q)

	started := time.Now()
	res, err := g.backend.Search(ctx, req)
	if err = g.observe(opSearch, index, started, err); err != nil {
		return nil, err
	}
	return res, nil
}

// Count returns the number of documents of the given kinds matching q.
// Pagination, sort and aggregations of q are ignored.
func (g *Gateway) Count(ctx context.Context, index string, kinds []string, q *query.Query) (int, error) {
	if !g.available {
		g.degraded(opCount, zap.String("index", index))
		return 0, nil
	}
	req := toRequest(index, kinds, q)
	req.From, req.Size, req.Sort, req.Aggs = 0, 0, nil, nil

	started := time.Now()
	n, err := g.backend.Count(ctx, req)
	if err = g.observe(opCount, index, started, err); err != nil {
		return 0, err
	}
	return n, nil
}

// Put writes doc as a partial update with upsert. If the backend reports
// the document or index missing, the write is retried once as a full
// create-or-overwrite.
func (g *Gateway) Put(ctx context.Context, index string, doc document.Document) error {
	if !g.available {
		g.degraded(opPut, zap.String("index", index), zap.String("id", doc.DocID()))
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.DocID(), err)
	}
	kind := doc.Kind().String()

	started := time.Now()
	err = g.backend.Update(ctx, &db.UpdateRequest{
		Index:  index,
		Kind:   kind,
		ID:     doc.DocID(),
		Doc:    raw,
		Upsert: true,
	})
	if errors.Is(err, db.ErrDocumentNotFound) || errors.Is(err, db.ErrIndexNotFound) {
		g.logger.Debug("Update found nothing, creating document",
			zap.String("index", index), zap.String("kind", kind), zap.String("id", doc.DocID()))
		err = g.backend.Put(ctx, index, kind, doc.DocID(), raw)
	}
	return g.observe(opPut, index, started, err)
}

// Delete removes the document (kind, id).
func (g *Gateway) Delete(ctx context.Context, index, kind, id string) error {
	if !g.available {
		g.degraded(opDelete, zap.String("index", index), zap.String("id", id))
		return nil
	}
	started := time.Now()
	err := g.backend.Delete(ctx, index, kind, id)
	return g.observe(opDelete, index, started, err)
}

// CreateIndex creates an index. An existing index yields a SearchError
// wrapping db.ErrIndexExists.
func (g *Gateway) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if !g.available {
		g.degraded(opCreateIndex, zap.String("index", def.Name))
		return nil
	}
	started := time.Now()
	err := g.backend.CreateIndex(ctx, def)
	return g.observe(opCreateIndex, def.Name, started, err)
}

// DeleteIndex drops an index with its documents.
func (g *Gateway) DeleteIndex(ctx context.Context, name string) error {
	if !g.available {
		g.degraded(opDeleteIndex, zap.String("index", name))
		return nil
	}
	started := time.Now()
	err := g.backend.DropIndex(ctx, name)
	return g.observe(opDeleteIndex, name, started, err)
}

// toRequest translates the query DSL into a backend request.
func toRequest(index string, kinds []string, q *query.Query) *db.SearchRequest {
	req := &db.SearchRequest{Index: index, Kinds: kinds, Size: DefaultSize}
	if q == nil {
		return req
	}
	req.QueryString, _ = q.QueryString()
	if bf := q.BoolFilter(); bf != nil {
		req.Filter = &db.BoolFilter{
			Must:    toClauses(bf.Must),
			Should:  toClauses(bf.Should),
			MustNot: toClauses(bf.MustNot),
		}
	}
	if q.From != nil {
		req.From = *q.From
	}
	if q.Size != nil {
		req.Size = *q.Size
	}
	for _, s := range q.Sort {
		req.Sort = append(req.Sort, db.Sort{Field: s.Field, Desc: s.Desc()})
	}
	names := make([]string, 0, len(q.Aggregations))
	for name, a := range q.Aggregations {
		if a.Terms != nil {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		t := q.Aggregations[name].Terms
		req.Aggs = append(req.Aggs, db.TermsAggregation{Name: name, Field: t.Field, Size: t.Size})
	}
	return req
}

func toClauses(in []query.Clause) []db.Clause {
	var out []db.Clause
	for _, c := range in {
		out = appendClauses(out, db.ClauseTerm, c.Term)
		out = appendClauses(out, db.ClausePrefix, c.Prefix)
	}
	return out
}

func appendClauses(out []db.Clause, op db.ClauseOp, m map[string]string) []db.Clause {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		out = append(out, db.Clause{Op: op, Field: f, Value: m[f]})
	}
	return out
}
