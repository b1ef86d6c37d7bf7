package gateway

import (
	"errors"
	"strings"

	"github.com/kailas-cloud/nodesearch/internal/db"
)

// ErrUnavailable is reported by Ping on a gateway whose backend never
// became ready.
var ErrUnavailable = errors.New("search backend unavailable")

// IndexNotFoundError reports a missing index or document.
type IndexNotFoundError struct {
	Index string
	Err   error
}

func (e *IndexNotFoundError) Error() string {
	return "index not found: " + e.Index + ": " + e.Err.Error()
}

func (e *IndexNotFoundError) Unwrap() error { return e.Err }

// MalformedQueryError reports a query the backend could not parse.
type MalformedQueryError struct {
	Err error
}

func (e *MalformedQueryError) Error() string { return "malformed query: " + e.Err.Error() }

func (e *MalformedQueryError) Unwrap() error { return e.Err }

// SearchError reports any other backend failure.
type SearchError struct {
	Op  string
	Err error
}

func (e *SearchError) Error() string { return "search backend " + e.Op + ": " + e.Err.Error() }

func (e *SearchError) Unwrap() error { return e.Err }

// parseMarkers identify query-parse failures reported only as text.
var parseMarkers = []string{"syntax error", "parseexception", "failed to parse query"}

func isParseFailure(err error) bool {
	if errors.Is(err, db.ErrQuerySyntax) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range parseMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// classify maps a backend error onto the gateway taxonomy.
func classify(op, index string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrIndexNotFound), errors.Is(err, db.ErrDocumentNotFound):
		return &IndexNotFoundError{Index: index, Err: err}
	case isParseFailure(err):
		return &MalformedQueryError{Err: err}
	default:
		return &SearchError{Op: op, Err: err}
	}
}

// IsNotFound reports whether err is an IndexNotFoundError.
func IsNotFound(err error) bool {
	var nf *IndexNotFoundError
	return errors.As(err, &nf)
}

// IsMalformedQuery reports whether err is a MalformedQueryError.
func IsMalformedQuery(err error) bool {
	var mq *MalformedQueryError
	return errors.As(err, &mq)
}
