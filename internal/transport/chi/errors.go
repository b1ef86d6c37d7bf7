package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nodesearch/internal/domain"
	"github.com/kailas-cloud/nodesearch/internal/gateway"
	logpkg "github.com/kailas-cloud/nodesearch/internal/logger"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeInvalidQuery     ErrorCode = "invalid_query"
	CodeMalformedQuery   ErrorCode = "malformed_query"
	CodeNotFound         ErrorCode = "not_found"
	CodeIndexNotFound    ErrorCode = "index_not_found"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeSearchError      ErrorCode = "search_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorMapping is the HTTP rendering of a domain error.
type errorMapping struct {
	status  int
	code    ErrorCode
	message string
}

// errorHandler tries to map a domain error. Returns false if it does not apply.
type errorHandler func(err error) (errorMapping, bool)

var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
	sentinelHandler(domain.ErrBatchTooLarge, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
	typeHandler[*gateway.MalformedQueryError](http.StatusBadRequest, CodeMalformedQuery, "malformed query"),
	typeHandler[*gateway.IndexNotFoundError](http.StatusNotFound, CodeIndexNotFound, "index not found"),
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
	typeHandler[*gateway.SearchError](http.StatusBadGateway, CodeSearchError, "search backend error"),
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(err error) (errorMapping, bool) {
		if !errors.Is(err, sentinel) {
			return errorMapping{}, false
		}
		return errorMapping{status: status, code: code, message: sentinel.Error()}, true
	}
}

// typeHandler returns an errorHandler that matches an error type anywhere
// in the chain.
func typeHandler[E error](status int, code ErrorCode, msg string) errorHandler {
	return func(err error) (errorMapping, bool) {
		var target E
		if !errors.As(err, &target) {
			return errorMapping{}, false
		}
		return errorMapping{status: status, code: code, message: msg}, true
	}
}

// mapError renders err without exposing internals.
func mapError(err error) (errorMapping, bool) {
	for _, h := range errorHandlers {
		if m, ok := h(err); ok {
			return m, true
		}
	}
	return errorMapping{status: http.StatusInternalServerError, code: CodeInternalError, message: "internal error"}, false
}

// handleDomainError writes the mapped error and logs it with the request
// scoped logger.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context())
	m, known := mapError(err)
	if known {
		logger.Warn("domain error", zap.Error(err))
	} else {
		logger.Error("internal error", zap.Error(err))
	}
	writeError(w, m.status, m.code, m.message)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
