package proximity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/qeats/internal/db"
	"github.com/kailas-cloud/qeats/internal/domain/geo"
	"github.com/kailas-cloud/qeats/internal/domain/restaurant"
	"github.com/kailas-cloud/qeats/internal/domain/schedule"
)

const (
	// DefaultKeyPrefix namespaces bucket entries in the shared backend.
	DefaultKeyPrefix = "qeats:nearby:"
	// DefaultTTL is the lifetime of a bucket entry, reset by every write.
	DefaultTTL = 3600 * time.Second
)

// backend is the consumer interface for the cache backend (ISP).
// db.Handle satisfies it.
type backend interface {
	Available() bool
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Append(ctx context.Context, key string, value []byte) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// source is the store scan used to fill the cache.
type source interface {
	AllRestaurants(ctx context.Context) ([]restaurant.Snapshot, error)
}

// Cache is a cache-aside layer over the restaurant store keyed by geo bucket.
type Cache struct {
	backend    backend
	source     source
	ttl        time.Duration
	prefix     string
	guard      bool
	flight     singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a proximity cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"bypass"/"corrupt"), passed explicitly.
func New(
	b backend,
	src source,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		backend:    b,
		source:     src,
		ttl:        DefaultTTL,
		prefix:     DefaultKeyPrefix,
		guard:      true,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// WithTTL overrides the entry lifetime.
func (c *Cache) WithTTL(ttl time.Duration) *Cache {
	if ttl > 0 {
		c.ttl = ttl
	}
	return c
}

// WithKeyPrefix overrides the key namespace.
func (c *Cache) WithKeyPrefix(prefix string) *Cache {
	if prefix != "" {
		c.prefix = prefix
	}
	return c
}

// WithPopulateGuard toggles the per-bucket single-flight around fetch-and-populate.
// Without it concurrent misses on one bucket each scan the store and each write.
func (c *Cache) WithPopulateGuard(enabled bool) *Cache {
	c.guard = enabled
	return c
}

// Key returns the backend key of the bucket containing p.
func (c *Cache) Key(p geo.Point) string {
	return c.prefix + geo.BucketKey(p)
}

// FindNearbyOpen returns restaurants open at t within radiusKm of p.
// The cache holds the unfiltered store scan per bucket; filtering happens on every call.
func (c *Cache) FindNearbyOpen(
	ctx context.Context, p geo.Point, t schedule.TimeOfDay, radiusKm float64,
) ([]restaurant.Snapshot, error) {
	if !c.backend.Available() {
		c.inc("bypass")
		all, err := c.source.AllRestaurants(ctx)
		if err != nil {
			return nil, fmt.Errorf("load restaurants: %w", err)
		}
		return restaurant.Filter(all, p, t, radiusKm), nil
	}

	if cached, ok := c.Lookup(ctx, p); ok {
		c.inc("hit")
		return restaurant.Filter(cached, p, t, radiusKm), nil
	}

	c.inc("miss")

	all, err := c.fill(ctx, p)
	if err != nil {
		return nil, err
	}
	return restaurant.Filter(all, p, t, radiusKm), nil
}

// Lookup reads the bucket entry for p. Absent, expired, unreadable and corrupted
// entries are all reported as a miss; a corrupted entry is removed.
func (c *Cache) Lookup(ctx context.Context, p geo.Point) ([]restaurant.Snapshot, bool) {
	key := c.Key(p)

	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read proximity entry", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	list, err := decodeSnapshots(data)
	if err != nil {
		c.inc("corrupt")
		c.logger.Warn("Dropping corrupted proximity entry", zap.String("key", key), zap.Error(err))
		if delErr := c.backend.Del(ctx, key); delErr != nil {
			c.logger.Warn("Failed to delete corrupted proximity entry", zap.String("key", key), zap.Error(delErr))
		}
		return nil, false
	}
	return list, true
}

// Populate appends snapshots to the bucket entry for p, creating it when absent,
// and resets the TTL of the whole entry.
func (c *Cache) Populate(ctx context.Context, p geo.Point, list []restaurant.Snapshot) error {
	if len(list) == 0 {
		return nil
	}
	key := c.Key(p)

	data, err := encodeSnapshots(list)
	if err != nil {
		return fmt.Errorf("encode bucket %s: %w", key, err)
	}

	exists, err := c.backend.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", key, err)
	}
	if !exists {
		if err := c.backend.SetWithTTL(ctx, key, data, c.ttl); err != nil {
			return fmt.Errorf("set bucket %s: %w", key, err)
		}
		return nil
	}

	data = append([]byte{entrySeparator}, data...)
	if _, err := c.backend.Append(ctx, key, data); err != nil {
		return fmt.Errorf("append bucket %s: %w", key, err)
	}
	if err := c.backend.Expire(ctx, key, c.ttl); err != nil {
		return fmt.Errorf("expire bucket %s: %w", key, err)
	}
	return nil
}

func (c *Cache) fill(ctx context.Context, p geo.Point) ([]restaurant.Snapshot, error) {
	if !c.guard {
		return c.loadAndPopulate(ctx, p)
	}

	// The flight is shared by every caller on the key, so it must not inherit
	// the cancellation of whichever caller happened to start it.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(c.Key(p), func() (any, error) {
		// A flight that finished before this one started has already written the entry.
		if cached, ok := c.Lookup(flightCtx, p); ok {
			return cached, nil
		}
		return c.loadAndPopulate(flightCtx, p)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]restaurant.Snapshot), nil
	}
}

func (c *Cache) loadAndPopulate(ctx context.Context, p geo.Point) ([]restaurant.Snapshot, error) {
	all, err := c.source.AllRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("load restaurants: %w", err)
	}
	if err := c.Populate(ctx, p, all); err != nil {
		c.logger.Warn("Failed to populate proximity entry", zap.String("key", c.Key(p)), zap.Error(err))
	}
	return all, nil
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
