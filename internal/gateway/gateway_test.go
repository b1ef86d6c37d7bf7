package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/nodesearch/internal/db"
	"github.com/kailas-cloud/nodesearch/internal/domain/category"
	"github.com/kailas-cloud/nodesearch/internal/domain/document"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/query"
	"github.com/kailas-cloud/nodesearch/internal/metrics"
)

type mockBackend struct {
	readyErr  error
	updateErr error
	putErr    error
	deleteErr error
	searchErr error
	countN    int

	updates  []*db.UpdateRequest
	puts     int
	searches []*db.SearchRequest
}

func (m *mockBackend) Ping(context.Context) error { return nil }
func (m *mockBackend) Close()                     {}
func (m *mockBackend) WaitForReady(context.Context, time.Duration) error {
	return m.readyErr
}
func (m *mockBackend) CreateIndex(context.Context, *db.IndexDefinition) error { return nil }
func (m *mockBackend) DropIndex(context.Context, string) error                { return db.ErrIndexNotFound }
func (m *mockBackend) IndexExists(context.Context, string) (bool, error)      { return true, nil }

func (m *mockBackend) Update(_ context.Context, req *db.UpdateRequest) error {
	m.updates = append(m.updates, req)
	return m.updateErr
}

func (m *mockBackend) Put(context.Context, string, string, string, []byte) error {
	m.puts++
	return m.putErr
}

func (m *mockBackend) Delete(context.Context, string, string, string) error { return m.deleteErr }

func (m *mockBackend) Search(_ context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	m.searches = append(m.searches, req)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return &db.SearchResult{Total: 1, Hits: []db.Hit{{Kind: "user", ID: "u1"}}}, nil
}

func (m *mockBackend) Count(_ context.Context, req *db.SearchRequest) (int, error) {
	m.searches = append(m.searches, req)
	return m.countN, m.searchErr
}

func userDoc() *document.UserDocument {
	return &document.UserDocument{ID: "u1", User: "Ada", Category: category.User, Boost: document.BoostDefault}
}

func TestNew_Available(t *testing.T) {
	g := New(context.Background(), &mockBackend{}, nil, time.Second)
	if !g.Available() {
		t.Fatal("expected available gateway")
	}
	if err := g.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNew_UnavailableIsPermanent(t *testing.T) {
	b := &mockBackend{readyErr: errors.New("connection refused")}
	g := New(context.Background(), b, nil, time.Millisecond)
	if g.Available() {
		t.Fatal("expected unavailable gateway")
	}
	b.readyErr = nil
	if g.Available() {
		t.Fatal("gateway must not reconnect")
	}
	if err := g.Ping(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestUnavailable_NeutralValues(t *testing.T) {
	g := Disabled(nil, errors.New("no client"))
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.BackendDegradedTotal.WithLabelValues(opCount))

	n, err := g.Count(ctx, "website", nil, query.New("x"))
	if err != nil || n != 0 {
		t.Errorf("Count: got %d, %v", n, err)
	}
	res, err := g.Search(ctx, "website", nil, query.New("x"))
	if err != nil || res == nil || len(res.Hits) != 0 || res.Total != 0 {
		t.Errorf("Search: got %+v, %v", res, err)
	}
	if err := g.Put(ctx, "website", userDoc()); err != nil {
		t.Errorf("Put: %v", err)
	}
	if err := g.Delete(ctx, "website", "user", "u1"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := g.CreateIndex(ctx, &db.IndexDefinition{Name: "website"}); err != nil {
		t.Errorf("CreateIndex: %v", err)
	}
	if err := g.DeleteIndex(ctx, "website"); err != nil {
		t.Errorf("DeleteIndex: %v", err)
	}

	after := testutil.ToFloat64(metrics.BackendDegradedTotal.WithLabelValues(opCount))
	if after != before+1 {
		t.Errorf("expected degraded counter to grow by 1, got %f -> %f", before, after)
	}
}

func TestPut_UpsertThenFallback(t *testing.T) {
	b := &mockBackend{}
	g := New(context.Background(), b, nil, time.Second)
	if err := g.Put(context.Background(), "website", userDoc()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.updates) != 1 || !b.updates[0].Upsert || b.updates[0].Kind != "user" || b.updates[0].ID != "u1" {
		t.Fatalf("unexpected update %+v", b.updates)
	}
	if b.puts != 0 {
		t.Fatalf("expected no fallback, got %d puts", b.puts)
	}

	b.updateErr = db.ErrIndexNotFound
	if err := g.Put(context.Background(), "website", userDoc()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.puts != 1 {
		t.Fatalf("expected one fallback put, got %d", b.puts)
	}

	b.putErr = errors.New("disk full")
	err := g.Put(context.Background(), "website", userDoc())
	var se *SearchError
	if !errors.As(err, &se) {
		t.Fatalf("expected SearchError, got %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"index not found", db.ErrIndexNotFound, IsNotFound},
		{"document not found", db.ErrDocumentNotFound, IsNotFound},
		{"syntax sentinel", &db.Error{Op: db.OpSearch, Err: db.ErrQuerySyntax}, IsMalformedQuery},
		{"parse marker", errors.New("ParseException: cannot parse 'a AND'"), IsMalformedQuery},
		{"other", errors.New("connection reset"), func(err error) bool {
			var se *SearchError
			return errors.As(err, &se)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := &mockBackend{searchErr: tc.err}
			g := New(context.Background(), b, nil, time.Second)
			_, err := g.Search(context.Background(), "website", nil, query.New("a"))
			if !tc.check(err) {
				t.Errorf("unexpected classification of %v: %T", tc.err, err)
			}
			if !errors.Is(err, tc.err) {
				t.Errorf("classified error should wrap the cause")
			}
		})
	}
}

func TestDelete_NotFound(t *testing.T) {
	g := New(context.Background(), &mockBackend{deleteErr: db.ErrDocumentNotFound}, nil, time.Second)
	if err := g.Delete(context.Background(), "website", "user", "u1"); !IsNotFound(err) {
		t.Fatalf("expected IndexNotFoundError, got %v", err)
	}
}

func TestToRequest(t *testing.T) {
	q := query.NewFiltered(query.BoolFilter{
		Must:    []query.Clause{query.PrefixClause("user", "jo")},
		MustNot: []query.Clause{query.TermClause("id", "u2")},
	}).WithPage(20, 5)
	q.Sort = []query.SortField{{Field: "_score"}, {Field: "boost", Order: query.OrderAsc}}
	q.AddTermsAggregation("tag_cloud", "tags")

	req := toRequest("website", []string{"user"}, q)
	if req.QueryString != "" || req.From != 20 || req.Size != 5 {
		t.Errorf("unexpected paging %+v", req)
	}
	if len(req.Filter.Must) != 1 || req.Filter.Must[0] != (db.Clause{Op: db.ClausePrefix, Field: "user", Value: "jo"}) {
		t.Errorf("unexpected must %+v", req.Filter.Must)
	}
	if len(req.Filter.MustNot) != 1 || req.Filter.MustNot[0].Op != db.ClauseTerm {
		t.Errorf("unexpected must_not %+v", req.Filter.MustNot)
	}
	if len(req.Sort) != 2 || !req.Sort[0].Desc || req.Sort[1].Desc {
		t.Errorf("unexpected sort %+v", req.Sort)
	}
	if len(req.Aggs) != 1 || req.Aggs[0].Name != "tag_cloud" || req.Aggs[0].Field != "tags" {
		t.Errorf("unexpected aggs %+v", req.Aggs)
	}

	if got := toRequest("website", nil, query.New("x")); got.Size != DefaultSize {
		t.Errorf("expected default size %d, got %d", DefaultSize, got.Size)
	}
}

func TestCount_IgnoresPagination(t *testing.T) {
	b := &mockBackend{countN: 7}
	g := New(context.Background(), b, nil, time.Second)
	q := query.New("x").WithPage(10, 10)
	q.AddTermsAggregation("tag_cloud", "tags")

	n, err := g.Count(context.Background(), "website", []string{"project"}, q)
	if err != nil || n != 7 {
		t.Fatalf("got %d, %v", n, err)
	}
	req := b.searches[0]
	if req.From != 0 || req.Size != 0 || req.Aggs != nil || req.Kinds[0] != "project" {
		t.Errorf("unexpected count request %+v", req)
	}
}
