package restaurant

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/qeats/internal/domain/geo"
	"github.com/kailas-cloud/qeats/internal/domain/menu"
	domrest "github.com/kailas-cloud/qeats/internal/domain/restaurant"
	"github.com/kailas-cloud/qeats/internal/domain/schedule"
)

// Search modes, used as metric labels.
const (
	ModeNearby     = "nearby"
	ModeSequential = "sequential"
	ModeConcurrent = "concurrent"
)

// predicate is one of the four search lookups.
type predicate struct {
	name string
	run  func(ctx context.Context, query string) ([]domrest.Snapshot, error)
}

// Service finds open restaurants near a point and searches them by text.
type Service struct {
	store  Store
	nearby Nearby

	predicateDuration *prometheus.HistogramVec
	searchTotal       *prometheus.CounterVec
}

// New creates a restaurant service.
func New(store Store, nearby Nearby) *Service {
	return &Service{store: store, nearby: nearby}
}

// WithMetrics attaches search metrics.
// predicateDuration is labelled by "predicate", searchTotal by "mode".
func (s *Service) WithMetrics(predicateDuration *prometheus.HistogramVec, searchTotal *prometheus.CounterVec) *Service {
	s.predicateDuration = predicateDuration
	s.searchTotal = searchTotal
	return s
}

// FindNearbyOpen lists restaurants open at t within the serving radius for t.
func (s *Service) FindNearbyOpen(ctx context.Context, p geo.Point, t schedule.TimeOfDay) ([]domrest.Snapshot, error) {
	s.incSearch(ModeNearby)
	list, err := s.nearby.FindNearbyOpen(ctx, p, t, schedule.RadiusKm(t))
	if err != nil {
		return nil, fmt.Errorf("find nearby: %w", err)
	}
	return list, nil
}

// Search runs the four predicates in order and returns the union, first occurrence wins.
func (s *Service) Search(ctx context.Context, p geo.Point, query string, t schedule.TimeOfDay) ([]domrest.Snapshot, error) {
	if strings.TrimSpace(query) == "" {
		return []domrest.Snapshot{}, nil
	}
	s.incSearch(ModeSequential)
	radius := schedule.RadiusKm(t)

	rs := domrest.NewResultSet()
	for _, pr := range s.predicates() {
		list, err := s.runPredicate(ctx, pr, query)
		if err != nil {
			return nil, err
		}
		rs.AddAll(domrest.Filter(list, p, t, radius))
	}
	return rs.Items(), nil
}

// SearchConcurrent runs the four predicates in parallel. The first failure cancels
// the others and fails the call. Duplicates are removed by value after the join.
func (s *Service) SearchConcurrent(
	ctx context.Context, p geo.Point, query string, t schedule.TimeOfDay,
) ([]domrest.Snapshot, error) {
	if strings.TrimSpace(query) == "" {
		return []domrest.Snapshot{}, nil
	}
	s.incSearch(ModeConcurrent)
	radius := schedule.RadiusKm(t)

	preds := s.predicates()
	results := make([][]domrest.Snapshot, len(preds))

	g, gctx := errgroup.WithContext(ctx)
	for i, pr := range preds {
		g.Go(func() error {
			list, err := s.runPredicate(gctx, pr, query)
			if err != nil {
				return err
			}
			results[i] = domrest.Filter(list, p, t, radius)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var joined []domrest.Snapshot
	for _, list := range results {
		joined = append(joined, list...)
	}
	return domrest.Distinct(joined), nil
}

func (s *Service) predicates() []predicate {
	return []predicate{
		{name: "name", run: s.byName},
		{name: "attributes", run: s.byAttribute},
		{name: "item_name", run: s.byItemName},
		{name: "item_attributes", run: s.byItemAttributes},
	}
}

func (s *Service) runPredicate(ctx context.Context, pr predicate, query string) ([]domrest.Snapshot, error) {
	start := time.Now()
	list, err := pr.run(ctx, query)
	if s.predicateDuration != nil {
		s.predicateDuration.WithLabelValues(pr.name).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("search by %s: %w", pr.name, err)
	}
	return list, nil
}

// byName returns exact name matches followed by partial matches not already found.
func (s *Service) byName(ctx context.Context, query string) ([]domrest.Snapshot, error) {
	exact, err := s.store.ByExactName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("exact name: %w", err)
	}
	partial, err := s.store.ByPartialName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("partial name: %w", err)
	}

	rs := domrest.NewResultSet()
	rs.AddAll(exact)
	rs.AddAll(partial)
	return rs.Items(), nil
}

func (s *Service) byAttribute(ctx context.Context, query string) ([]domrest.Snapshot, error) {
	return s.store.ByAttribute(ctx, query)
}

func (s *Service) byItemName(ctx context.Context, query string) ([]domrest.Snapshot, error) {
	exact, err := s.store.ItemsByExactName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("exact item name: %w", err)
	}
	byTokens, err := s.store.ItemsByNameTokens(ctx, strings.Fields(query))
	if err != nil {
		return nil, fmt.Errorf("item name tokens: %w", err)
	}
	return s.servingRestaurants(ctx, slices.Concat(exact, byTokens))
}

func (s *Service) byItemAttributes(ctx context.Context, query string) ([]domrest.Snapshot, error) {
	items, err := s.store.ItemsByAttributeTokens(ctx, strings.Fields(query))
	if err != nil {
		return nil, fmt.Errorf("item attribute tokens: %w", err)
	}
	return s.servingRestaurants(ctx, items)
}

// servingRestaurants resolves items to the distinct restaurants whose menus hold them.
func (s *Service) servingRestaurants(ctx context.Context, items []menu.Item) ([]domrest.Snapshot, error) {
	itemIDs := menu.ItemIDs(items)
	if len(itemIDs) == 0 {
		return nil, nil
	}
	ids, err := s.store.RestaurantIDsServingItems(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("restaurants serving items: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	list, err := s.store.RestaurantsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("restaurants by ids: %w", err)
	}
	return list, nil
}

func (s *Service) incSearch(mode string) {
	if s.searchTotal != nil {
		s.searchTotal.WithLabelValues(mode).Inc()
	}
}
