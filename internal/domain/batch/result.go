// Package batch holds per-entity outcomes of bulk reindex.
package batch

// ItemStatus is the processing outcome of a single reindexed entity.
type ItemStatus string

// Item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of syncing one node or user.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed result. A nil err still marks the entity failed.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the entity id.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Failed reports whether the entity did not sync.
func (r Result) Failed() bool { return r.status == StatusError }

// CountFailed counts failed results across lists.
func CountFailed(lists ...[]Result) int {
	n := 0
	for _, list := range lists {
		for _, r := range list {
			if r.Failed() {
				n++
			}
		}
	}
	return n
}
