package restaurant

import (
	"context"

	"github.com/kailas-cloud/qeats/internal/domain/geo"
	"github.com/kailas-cloud/qeats/internal/domain/menu"
	domrest "github.com/kailas-cloud/qeats/internal/domain/restaurant"
	"github.com/kailas-cloud/qeats/internal/domain/schedule"
)

// Store defines the restaurant catalogue contract.
// Results are returned in store iteration order.
//
//nolint:interfacebloat // one method per search predicate lookup
type Store interface {
	AllRestaurants(ctx context.Context) ([]domrest.Snapshot, error)
	ByExactName(ctx context.Context, name string) ([]domrest.Snapshot, error)
	ByPartialName(ctx context.Context, name string) ([]domrest.Snapshot, error)
	ByAttribute(ctx context.Context, attr string) ([]domrest.Snapshot, error)
	ItemsByExactName(ctx context.Context, name string) ([]menu.Item, error)
	ItemsByNameTokens(ctx context.Context, tokens []string) ([]menu.Item, error)
	ItemsByAttributeTokens(ctx context.Context, tokens []string) ([]menu.Item, error)
	RestaurantIDsServingItems(ctx context.Context, itemIDs []string) ([]string, error)
	RestaurantsByIDs(ctx context.Context, ids []string) ([]domrest.Snapshot, error)
}

// Nearby finds open restaurants around a point through the proximity cache.
type Nearby interface {
	FindNearbyOpen(ctx context.Context, p geo.Point, t schedule.TimeOfDay, radiusKm float64) ([]domrest.Snapshot, error)
}
