package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/sync/nodes/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	return r
}

func serve(r http.Handler, method, path string) int {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr.Code
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := newRouter()
	counter := HTTPRequestsTotal.WithLabelValues("POST", "/sync/nodes/{id}", "204")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"p1", "p2", "c9"} {
		if code := serve(r, "POST", "/sync/nodes/"+id); code != http.StatusNoContent {
			t.Fatalf("unexpected status %d", code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("expected 3 requests under the route pattern, got %v", got)
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	r := newRouter()
	counter := HTTPRequestsTotal.WithLabelValues("POST", "/search", "200")
	before := testutil.ToFloat64(counter)

	serve(r, "POST", "/search")

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("handler without WriteHeader should count as 200, got delta %v", got)
	}
	if testutil.CollectAndCount(HTTPRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_StatusAndUnmatched(t *testing.T) {
	r := newRouter()
	bad := HTTPRequestsTotal.WithLabelValues("GET", "/boom", "502")
	missing := HTTPRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")
	badBefore, missingBefore := testutil.ToFloat64(bad), testutil.ToFloat64(missing)

	serve(r, "GET", "/boom")
	serve(r, "GET", "/does/not/exist")

	if got := testutil.ToFloat64(bad) - badBefore; got != 1 {
		t.Errorf("expected one 502, got delta %v", got)
	}
	if got := testutil.ToFloat64(missing) - missingBefore; got != 1 {
		t.Errorf("expected one unmatched 404, got delta %v", got)
	}
}

func TestMiddleware_InFlightReturnsToZero(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	var during float64
	r.Get("/slow", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(HTTPRequestsInFlight)
		w.WriteHeader(http.StatusOK)
	})
	before := testutil.ToFloat64(HTTPRequestsInFlight)

	serve(r, "GET", "/slow")

	if during != before+1 {
		t.Errorf("expected in-flight %v during request, got %v", before+1, during)
	}
	if after := testutil.ToFloat64(HTTPRequestsInFlight); after != before {
		t.Errorf("expected in-flight back to %v, got %v", before, after)
	}
}

func TestRegisterHTTPMetrics_Idempotent(t *testing.T) {
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()
}
