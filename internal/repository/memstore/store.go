package memstore

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/kailas-cloud/qeats/internal/domain"
	"github.com/kailas-cloud/qeats/internal/domain/menu"
	"github.com/kailas-cloud/qeats/internal/domain/restaurant"
)

// Store is an in-memory restaurant catalogue. Iteration order is insertion order.
type Store struct {
	mu          sync.RWMutex
	restaurants []restaurant.Snapshot
	items       []menu.Item
	menus       []menu.Menu
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Load replaces the catalogue.
func (s *Store) Load(restaurants []restaurant.Snapshot, items []menu.Item, menus []menu.Menu) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurants = slices.Clone(restaurants)
	s.items = slices.Clone(items)
	s.menus = slices.Clone(menus)
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// AllRestaurants returns every restaurant.
func (s *Store) AllRestaurants(_ context.Context) ([]restaurant.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.restaurants), nil
}

// ByExactName matches names case-sensitively.
func (s *Store) ByExactName(_ context.Context, name string) ([]restaurant.Snapshot, error) {
	return s.filterRestaurants(func(r *restaurant.Snapshot) bool {
		return r.Name() == name
	}), nil
}

// ByPartialName matches names containing name, ignoring case.
func (s *Store) ByPartialName(_ context.Context, name string) ([]restaurant.Snapshot, error) {
	re := literal(name)
	return s.filterRestaurants(func(r *restaurant.Snapshot) bool {
		return re.MatchString(r.Name())
	}), nil
}

// ByAttribute matches restaurants with any attribute containing attr, ignoring case.
func (s *Store) ByAttribute(_ context.Context, attr string) ([]restaurant.Snapshot, error) {
	re := literal(attr)
	return s.filterRestaurants(func(r *restaurant.Snapshot) bool {
		return anyMatch(re, r.Attributes())
	}), nil
}

// ItemsByExactName matches item names case-sensitively.
func (s *Store) ItemsByExactName(_ context.Context, name string) ([]menu.Item, error) {
	return s.filterItems(func(it *menu.Item) bool {
		return it.Name == name
	}), nil
}

// ItemsByNameTokens matches items whose name contains any token, ignoring case.
func (s *Store) ItemsByNameTokens(_ context.Context, tokens []string) ([]menu.Item, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	re := alternation(tokens)
	return s.filterItems(func(it *menu.Item) bool {
		return re.MatchString(it.Name)
	}), nil
}

// ItemsByAttributeTokens matches items where every token is found in some attribute.
func (s *Store) ItemsByAttributeTokens(_ context.Context, tokens []string) ([]menu.Item, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	patterns := make([]*regexp.Regexp, len(tokens))
	for i, tok := range tokens {
		patterns[i] = literal(tok)
	}
	return s.filterItems(func(it *menu.Item) bool {
		for _, re := range patterns {
			if !anyMatch(re, it.Attributes) {
				return false
			}
		}
		return true
	}), nil
}

// RestaurantIDsServingItems returns distinct ids of restaurants whose menu holds any of itemIDs.
func (s *Store) RestaurantIDsServingItems(_ context.Context, itemIDs []string) ([]string, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for i := range s.menus {
		m := &s.menus[i]
		if slices.Contains(out, m.RestaurantID) {
			continue
		}
		for _, it := range m.Items {
			if slices.Contains(itemIDs, it.ID) {
				out = append(out, m.RestaurantID)
				break
			}
		}
	}
	return out, nil
}

// RestaurantsByIDs returns the restaurants with the given ids in store order.
func (s *Store) RestaurantsByIDs(_ context.Context, ids []string) ([]restaurant.Snapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.filterRestaurants(func(r *restaurant.Snapshot) bool {
		return slices.Contains(ids, r.ID())
	}), nil
}

// MenuByRestaurantID returns the menu of a restaurant.
func (s *Store) MenuByRestaurantID(_ context.Context, restaurantID string) (menu.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.menus {
		if s.menus[i].RestaurantID == restaurantID {
			m := s.menus[i]
			m.Items = slices.Clone(m.Items)
			return m, nil
		}
	}
	return menu.Menu{}, domain.ErrMenuNotFound
}

func (s *Store) filterRestaurants(match func(*restaurant.Snapshot) bool) []restaurant.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []restaurant.Snapshot
	for i := range s.restaurants {
		if match(&s.restaurants[i]) {
			out = append(out, s.restaurants[i])
		}
	}
	return out
}

func (s *Store) filterItems(match func(*menu.Item) bool) []menu.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []menu.Item
	for i := range s.items {
		if match(&s.items[i]) {
			out = append(out, s.items[i])
		}
	}
	return out
}

// literal compiles a case-insensitive pattern matching s literally.
func literal(s string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(s))
}

func alternation(tokens []string) *regexp.Regexp {
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = regexp.QuoteMeta(tok)
	}
	return regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
}

func anyMatch(re *regexp.Regexp, values []string) bool {
	for _, v := range values {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}
