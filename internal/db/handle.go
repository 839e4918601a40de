package db

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Handle owns the cache backend and its availability flag.
// A Handle that was never initialised (or was disposed) reports unavailable,
// and every operation returns ErrUnavailable.
type Handle struct {
	mu    sync.RWMutex
	store Store
}

// NewHandle returns an uninitialised handle.
func NewHandle() *Handle {
	return &Handle{}
}

// Init attaches a ready store. Calling Init twice closes the previous store.
func (h *Handle) Init(s Store) {
	h.mu.Lock()
	prev := h.store
	h.store = s
	h.mu.Unlock()

	if prev != nil && prev != s {
		prev.Close()
	}
}

// Available reports whether a store is attached.
func (h *Handle) Available() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.store != nil
}

// Dispose detaches and closes the store. With flush, all keys are removed first.
func (h *Handle) Dispose(ctx context.Context, flush bool) error {
	h.mu.Lock()
	s := h.store
	h.store = nil
	h.mu.Unlock()

	if s == nil {
		return nil
	}
	defer s.Close()

	if flush {
		if err := s.FlushAll(ctx); err != nil {
			return fmt.Errorf("flush cache: %w", err)
		}
	}
	return nil
}

func (h *Handle) current() (Store, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.store == nil {
		return nil, ErrUnavailable
	}
	return h.store, nil
}

// Ping checks backend connectivity.
func (h *Handle) Ping(ctx context.Context) error {
	s, err := h.current()
	if err != nil {
		return err
	}
	return s.Ping(ctx)
}

// Get retrieves a value by key.
func (h *Handle) Get(ctx context.Context, key string) ([]byte, error) {
	s, err := h.current()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, key)
}

// SetWithTTL stores a value with an expiration.
func (h *Handle) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s, err := h.current()
	if err != nil {
		return err
	}
	return s.SetWithTTL(ctx, key, value, ttl)
}

// Append appends value to the key, creating it when absent.
func (h *Handle) Append(ctx context.Context, key string, value []byte) (int64, error) {
	s, err := h.current()
	if err != nil {
		return 0, err
	}
	return s.Append(ctx, key, value)
}

// Exists checks if a key exists.
func (h *Handle) Exists(ctx context.Context, key string) (bool, error) {
	s, err := h.current()
	if err != nil {
		return false, err
	}
	return s.Exists(ctx, key)
}

// Expire sets TTL on a key.
func (h *Handle) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s, err := h.current()
	if err != nil {
		return err
	}
	return s.Expire(ctx, key, ttl)
}

// Del deletes a key.
func (h *Handle) Del(ctx context.Context, key string) error {
	s, err := h.current()
	if err != nil {
		return err
	}
	return s.Del(ctx, key)
}
