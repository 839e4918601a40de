package proximity

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qeats/internal/db"
	"github.com/kailas-cloud/qeats/internal/domain/geo"
	"github.com/kailas-cloud/qeats/internal/domain/restaurant"
	"github.com/kailas-cloud/qeats/internal/domain/schedule"
)

var origin = geo.Point{Lat: 12.9, Lon: 77.6}

// fakeBackend is an in-memory backend with lazy expiry driven by a manual clock.
type fakeBackend struct {
	mu          sync.Mutex
	unavailable bool
	data        map[string][]byte
	expiresAt   map[string]time.Time
	now         time.Time
	getErr      error
	setErr      error
	getCalls    int
	expireCalls int
	deleted     []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		data:      map[string][]byte{},
		expiresAt: map[string]time.Time{},
		now:       time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeBackend) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeBackend) expireLocked(key string) {
	if at, ok := f.expiresAt[key]; ok && !f.now.Before(at) {
		delete(f.data, key)
		delete(f.expiresAt, key)
	}
}

func (f *fakeBackend) Available() bool { return !f.unavailable }

func (f *fakeBackend) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.expireLocked(key)
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (f *fakeBackend) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expireLocked(key)
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeBackend) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = append([]byte(nil), value...)
	f.expiresAt[key] = f.now.Add(ttl)
	return nil
}

func (f *fakeBackend) Append(_ context.Context, key string, value []byte) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return 0, f.setErr
	}
	f.expireLocked(key)
	f.data[key] = append(f.data[key], value...)
	return int64(len(f.data[key])), nil
}

func (f *fakeBackend) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expireCalls++
	if _, ok := f.data[key]; ok {
		f.expiresAt[key] = f.now.Add(ttl)
	}
	return nil
}

func (f *fakeBackend) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	delete(f.data, key)
	delete(f.expiresAt, key)
	return nil
}

func (f *fakeBackend) ttlLeft(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiresAt[key].Sub(f.now)
}

// fakeSource counts full scans.
type fakeSource struct {
	mu      sync.Mutex
	list    []restaurant.Snapshot
	err     error
	calls   int
	delay   time.Duration
	barrier *sync.WaitGroup
}

func (s *fakeSource) AllRestaurants(ctx context.Context) ([]restaurant.Snapshot, error) {
	s.mu.Lock()
	s.calls++
	list, err := s.list, s.err
	s.mu.Unlock()

	if s.barrier != nil {
		s.barrier.Done()
		s.barrier.Wait()
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return list, err
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func snap(t *testing.T, id string, p geo.Point, opens, closes string, attrs ...string) restaurant.Snapshot {
	t.Helper()
	s, err := restaurant.New(id, "Restaurant "+id, "Bengaluru", "http://img/"+id, p,
		schedule.Window{OpensAt: schedule.MustParse(opens), ClosesAt: schedule.MustParse(closes)}, attrs)
	if err != nil {
		t.Fatalf("new snapshot %s: %v", id, err)
	}
	return s
}

// fixture: r1 ~150m open, r2 ~3.3km open, r3 at origin but closed until evening, r4 ~33km.
func fixture(t *testing.T) []restaurant.Snapshot {
	t.Helper()
	return []restaurant.Snapshot{
		snap(t, "r1", geo.Point{Lat: 12.901, Lon: 77.601}, "09:00", "23:00", "South Indian"),
		snap(t, "r2", geo.Point{Lat: 12.93, Lon: 77.6}, "09:00", "23:00", "Chinese"),
		snap(t, "r3", origin, "18:00", "23:00"),
		snap(t, "r4", geo.Point{Lat: 13.2, Lon: 77.6}, "00:00", "23:59"),
	}
}

func newTestCache(t *testing.T) (*Cache, *fakeBackend, *fakeSource) {
	t.Helper()
	b := newFakeBackend()
	src := &fakeSource{list: fixture(t)}
	return New(b, src, nil, zap.NewNop()), b, src
}

func ids(list []restaurant.Snapshot) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].ID()
	}
	return out
}
