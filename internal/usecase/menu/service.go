package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/qeats/internal/domain"
	dommenu "github.com/kailas-cloud/qeats/internal/domain/menu"
)

// Store defines the menu lookup contract.
type Store interface {
	MenuByRestaurantID(ctx context.Context, restaurantID string) (dommenu.Menu, error)
}

// Service serves restaurant menus.
type Service struct {
	store Store
}

// New creates a menu service.
func New(store Store) *Service {
	return &Service{store: store}
}

// FindMenu returns the menu of a restaurant.
func (s *Service) FindMenu(ctx context.Context, restaurantID string) (dommenu.Menu, error) {
	if restaurantID == "" {
		return dommenu.Menu{}, fmt.Errorf("%w: restaurant id is required", domain.ErrMenuNotFound)
	}
	m, err := s.store.MenuByRestaurantID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, domain.ErrMenuNotFound) {
			return dommenu.Menu{}, err
		}
		return dommenu.Menu{}, fmt.Errorf("get menu: %w", err)
	}
	return m, nil
}

// FindItem returns a single item from a restaurant's menu.
func (s *Service) FindItem(ctx context.Context, restaurantID, itemID string) (dommenu.Item, error) {
	m, err := s.FindMenu(ctx, restaurantID)
	if err != nil {
		return dommenu.Item{}, err
	}
	it, ok := m.Item(itemID)
	if !ok {
		return dommenu.Item{}, domain.ErrItemNotFound
	}
	return it, nil
}
