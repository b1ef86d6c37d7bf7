package health

import "context"

// Backend reports the state of the search backend.
type Backend interface {
	Available() bool
	Ping(ctx context.Context) error
}

// Pinger checks the canonical entity store.
type Pinger interface {
	Ping(ctx context.Context) error
}
