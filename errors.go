package nodesearch

import (
	"github.com/kailas-cloud/nodesearch/internal/domain"
	"github.com/kailas-cloud/nodesearch/internal/gateway"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrInvalidQuery  = domain.ErrInvalidQuery
	ErrBatchTooLarge = domain.ErrBatchTooLarge
	ErrUnavailable   = gateway.ErrUnavailable
)

// IsIndexNotFound reports whether err is a missing index or document.
func IsIndexNotFound(err error) bool { return gateway.IsNotFound(err) }

// IsMalformedQuery reports whether the backend rejected the query syntax.
func IsMalformedQuery(err error) bool { return gateway.IsMalformedQuery(err) }
