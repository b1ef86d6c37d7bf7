package db

import "errors"

// Sentinel errors for backend operations.
var (
	ErrDocumentNotFound = errors.New("db: document not found")
	ErrIndexNotFound    = errors.New("db: index not found")
	ErrIndexExists      = errors.New("db: index already exists")
	ErrQuerySyntax      = errors.New("db: query syntax error")
)

// Op constants name backend operations for error context. Redis adapters
// use the command names.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpAggregate   = "FT.AGGREGATE"
	OpJSONSet     = "JSON.SET"
	OpJSONMerge   = "JSON.MERGE"
	OpDel         = "DEL"
	OpExists      = "EXISTS"
	OpPing        = "PING"
)

// Op constants for the embedded bleve backend.
const (
	OpOpen   = "OPEN"
	OpBatch  = "BATCH"
	OpQuery  = "QUERY"
	OpSource = "SOURCE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
