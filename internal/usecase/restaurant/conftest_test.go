package restaurant

import (
	"context"
	"sync"
	"testing"

	"github.com/kailas-cloud/qeats/internal/domain/geo"
	"github.com/kailas-cloud/qeats/internal/domain/menu"
	domrest "github.com/kailas-cloud/qeats/internal/domain/restaurant"
	"github.com/kailas-cloud/qeats/internal/domain/schedule"
	"github.com/kailas-cloud/qeats/internal/repository/memstore"
)

var origin = geo.Point{Lat: 12.9, Lon: 77.6}

// spyStore wraps the in-memory store with call counting and fault injection.
type spyStore struct {
	*memstore.Store

	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
	block map[string]bool
}

func newSpyStore(inner *memstore.Store) *spyStore {
	return &spyStore{
		Store: inner,
		calls: map[string]int{},
		fail:  map[string]error{},
		block: map[string]bool{},
	}
}

// enter records a call and applies the configured fault for method.
// Blocked methods wait for cancellation.
func (s *spyStore) enter(ctx context.Context, method string) error {
	s.mu.Lock()
	s.calls[method]++
	err, blocked := s.fail[method], s.block[method]
	s.mu.Unlock()

	if blocked {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (s *spyStore) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *spyStore) ByExactName(ctx context.Context, name string) ([]domrest.Snapshot, error) {
	if err := s.enter(ctx, "ByExactName"); err != nil {
		return nil, err
	}
	return s.Store.ByExactName(ctx, name)
}

func (s *spyStore) ByPartialName(ctx context.Context, name string) ([]domrest.Snapshot, error) {
	if err := s.enter(ctx, "ByPartialName"); err != nil {
		return nil, err
	}
	return s.Store.ByPartialName(ctx, name)
}

func (s *spyStore) ByAttribute(ctx context.Context, attr string) ([]domrest.Snapshot, error) {
	if err := s.enter(ctx, "ByAttribute"); err != nil {
		return nil, err
	}
	return s.Store.ByAttribute(ctx, attr)
}

func (s *spyStore) ItemsByExactName(ctx context.Context, name string) ([]menu.Item, error) {
	if err := s.enter(ctx, "ItemsByExactName"); err != nil {
		return nil, err
	}
	return s.Store.ItemsByExactName(ctx, name)
}

func (s *spyStore) ItemsByNameTokens(ctx context.Context, tokens []string) ([]menu.Item, error) {
	if err := s.enter(ctx, "ItemsByNameTokens"); err != nil {
		return nil, err
	}
	return s.Store.ItemsByNameTokens(ctx, tokens)
}

func (s *spyStore) ItemsByAttributeTokens(ctx context.Context, tokens []string) ([]menu.Item, error) {
	if err := s.enter(ctx, "ItemsByAttributeTokens"); err != nil {
		return nil, err
	}
	return s.Store.ItemsByAttributeTokens(ctx, tokens)
}

func (s *spyStore) RestaurantIDsServingItems(ctx context.Context, itemIDs []string) ([]string, error) {
	if err := s.enter(ctx, "RestaurantIDsServingItems"); err != nil {
		return nil, err
	}
	return s.Store.RestaurantIDsServingItems(ctx, itemIDs)
}

func (s *spyStore) RestaurantsByIDs(ctx context.Context, ids []string) ([]domrest.Snapshot, error) {
	if err := s.enter(ctx, "RestaurantsByIDs"); err != nil {
		return nil, err
	}
	return s.Store.RestaurantsByIDs(ctx, ids)
}

// fakeNearby records the radius it was asked for.
type fakeNearby struct {
	list   []domrest.Snapshot
	err    error
	radius float64
}

func (f *fakeNearby) FindNearbyOpen(
	_ context.Context, _ geo.Point, _ schedule.TimeOfDay, radiusKm float64,
) ([]domrest.Snapshot, error) {
	f.radius = radiusKm
	return f.list, f.err
}

func mustSnapshot(t *testing.T, id, name string, p geo.Point, opens, closes string, attrs ...string) domrest.Snapshot {
	t.Helper()
	s, err := domrest.New(id, name, "Bengaluru", "", p,
		schedule.Window{OpensAt: schedule.MustParse(opens), ClosesAt: schedule.MustParse(closes)}, attrs)
	if err != nil {
		t.Fatalf("new snapshot %s: %v", id, err)
	}
	return s
}

// newCatalogue seeds restaurants around origin:
//
//	1 "Indian Spice"  at origin,  08:00-22:00, North Indian; serves Paneer Tikka
//	2 "Spice Garden"  ~1km,       09:00-21:00, Chinese;      serves Spice Noodles
//	3 "Dosa Hut"      ~4km,       00:00-23:59, South Indian; serves Paneer Tikka
//	4 "Night Owl"     ~100m,      22:00-23:59, Indian
//	5 "Spice"         ~100m,      06:00-23:00, Thai
func newCatalogue(t *testing.T) *memstore.Store {
	t.Helper()
	items := []menu.Item{
		{ID: "100", Name: "Paneer Tikka", Attributes: []string{"Spicy", "Vegetarian"}},
		{ID: "101", Name: "Spice Noodles", Attributes: []string{"Chinese", "Spicy"}},
	}
	s := memstore.New()
	s.Load(
		[]domrest.Snapshot{
			mustSnapshot(t, "1", "Indian Spice", origin, "08:00", "22:00", "North Indian"),
			mustSnapshot(t, "2", "Spice Garden", geo.Point{Lat: 12.909, Lon: 77.6}, "09:00", "21:00", "Chinese"),
			mustSnapshot(t, "3", "Dosa Hut", geo.Point{Lat: 12.936, Lon: 77.6}, "00:00", "23:59", "South Indian"),
			mustSnapshot(t, "4", "Night Owl", geo.Point{Lat: 12.901, Lon: 77.6}, "22:00", "23:59", "Indian"),
			mustSnapshot(t, "5", "Spice", geo.Point{Lat: 12.901, Lon: 77.6}, "06:00", "23:00", "Thai"),
		},
		items,
		[]menu.Menu{
			{RestaurantID: "1", Items: []menu.Item{items[0]}},
			{RestaurantID: "2", Items: []menu.Item{items[1]}},
			{RestaurantID: "3", Items: []menu.Item{items[0]}},
		},
	)
	return s
}

func ids(list []domrest.Snapshot) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].ID()
	}
	return out
}
