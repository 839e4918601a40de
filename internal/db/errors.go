package db

import "errors"

// Sentinel errors for cache backend operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrUnavailable = errors.New("db: cache unavailable")
)

// Op constants map to Valkey/Redis command names for error context.
const (
	OpGet      = "GET"
	OpSet      = "SET"
	OpAppend   = "APPEND"
	OpExists   = "EXISTS"
	OpExpire   = "EXPIRE"
	OpDel      = "DEL"
	OpFlushAll = "FLUSHALL"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
