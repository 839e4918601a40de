package health

import "context"

// StorePinger checks restaurant store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks the proximity cache backend.
// Available is false when the backend was never initialised or was disposed.
type CachePinger interface {
	Available() bool
	Ping(ctx context.Context) error
}
