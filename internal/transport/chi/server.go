package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/nodesearch/internal/domain/batch"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/nodesearch/internal/logger"
	"github.com/kailas-cloud/nodesearch/internal/metrics"
	contributoruc "github.com/kailas-cloud/nodesearch/internal/usecase/contributor"
	healthuc "github.com/kailas-cloud/nodesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/nodesearch/internal/usecase/search"
)

// Services groups the use cases served over HTTP.
type Services struct {
	Search       Searcher
	Contributors Contributors
	Sync         Syncer
	Reindex      Reindexer
	Lifecycle    Lifecycle
	Health       HealthChecker
}

// Options configures the router.
type Options struct {
	// IndexName is searched when a request names no index.
	IndexName string
	APIKeys   []string
	// TypeaheadRPS throttles contributor typeahead; 0 disables it.
	TypeaheadRPS   float64
	TypeaheadBurst int
}

// Server is the HTTP API of nodesearch.
type Server struct {
	svc    Services
	opts   Options
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, opts: opts, logger: logger}
}

// Handler returns the routed handler with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.opts.APIKeys))
	r.Use(metrics.Middleware())

	r.Post("/search", s.Search)
	r.With(RateLimitMiddleware(s.opts.TypeaheadRPS, s.opts.TypeaheadBurst)).
		Post("/search/contributors", s.SearchContributors)
	r.Post("/sync/nodes/{id}", s.SyncNode)
	r.Post("/sync/users/{id}", s.SyncUser)
	r.Post("/reindex", s.Reindex)
	r.Put("/index", s.CreateIndex)
	r.Delete("/index", s.DeleteIndex)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// Search handles POST /search?index=&type=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var q query.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	index := r.URL.Query().Get("index")
	if index == "" {
		index = s.opts.IndexName
	}
	searchType := r.URL.Query().Get("type")
	if searchType == "" {
		searchType = searchuc.AllTypes
	}

	resp, err := s.svc.Search.Search(r.Context(), &q, index, searchType)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ContributorRequest is the body of POST /search/contributors.
type ContributorRequest struct {
	Query       string   `json:"query"`
	Page        int      `json:"page"`
	Size        int      `json:"size"`
	Exclude     []string `json:"exclude"`
	CurrentUser string   `json:"current_user"`
}

// SearchContributors handles POST /search/contributors.
func (s *Server) SearchContributors(w http.ResponseWriter, r *http.Request) {
	var req ContributorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	page, err := s.svc.Contributors.Search(r.Context(), contributoruc.Request{
		Query:       req.Query,
		Page:        req.Page,
		Size:        req.Size,
		Exclude:     req.Exclude,
		CurrentUser: req.CurrentUser,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// SyncNode handles POST /sync/nodes/{id}.
func (s *Server) SyncNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r = r.WithContext(logpkg.WithFields(r.Context(), zap.String("node_id", id)))
	if err := s.svc.Sync.SyncNodeByID(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncUser handles POST /sync/users/{id}.
func (s *Server) SyncUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r = r.WithContext(logpkg.WithFields(r.Context(), zap.String("user_id", id)))
	if err := s.svc.Sync.SyncUserByID(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReindexRequest is the body of POST /reindex. All ignores the id lists.
type ReindexRequest struct {
	All   bool     `json:"all"`
	Nodes []string `json:"nodes"`
	Users []string `json:"users"`
}

// ReindexItem is the outcome of one reindexed entity.
type ReindexItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// ReindexResponse lists per-entity outcomes.
type ReindexResponse struct {
	Nodes []ReindexItem `json:"nodes"`
	Users []ReindexItem `json:"users"`
}

// Reindex handles POST /reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	var req ReindexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var nodes, users []dombatch.Result
	if req.All {
		report, err := s.svc.Reindex.All(r.Context())
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		nodes, users = report.Nodes, report.Users
	} else {
		if len(req.Nodes)+len(req.Users) == 0 {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "nodes, users or all is required")
			return
		}
		nodes = s.svc.Reindex.Nodes(r.Context(), req.Nodes)
		users = s.svc.Reindex.Users(r.Context(), req.Users)
	}

	writeJSON(w, http.StatusOK, ReindexResponse{Nodes: reindexItems(nodes), Users: reindexItems(users)})
}

func reindexItems(results []dombatch.Result) []ReindexItem {
	items := make([]ReindexItem, len(results))
	for i, r := range results {
		items[i] = ReindexItem{ID: r.ID(), Status: string(r.Status())}
		if r.Err() != nil {
			m, _ := mapError(r.Err())
			items[i].Error = &ErrorResponse{Code: m.code, Message: m.message}
		}
	}
	return items
}

// CreateIndex handles PUT /index.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Lifecycle.CreateIndex(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteIndex handles DELETE /index.
func (s *Server) DeleteIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Lifecycle.DeleteAll(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// HealthCheck handles GET /health. Degraded reports answer 200 as well.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())
	writeJSON(w, http.StatusOK, HealthResponse{Status: report.Status, Checks: report.Checks})
}
