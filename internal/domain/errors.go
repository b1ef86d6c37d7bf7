package domain

import "errors"

var (
	// ErrNotFound signals a missing entity in the canonical store.
	ErrNotFound = errors.New("not found")
	// ErrOrphaned signals a component whose parent cannot be resolved; such nodes are not indexed.
	ErrOrphaned = errors.New("orphaned component")
	// ErrInvalidQuery signals a query that does not have the filtered/query_string shape.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidDocument signals a document that failed construction-time validation.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrBatchTooLarge signals a reindex request over the item limit.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)
