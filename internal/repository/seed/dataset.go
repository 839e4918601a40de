package seed

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kailas-cloud/qeats/internal/domain/geo"
	"github.com/kailas-cloud/qeats/internal/domain/menu"
	"github.com/kailas-cloud/qeats/internal/domain/restaurant"
	"github.com/kailas-cloud/qeats/internal/domain/schedule"
)

// RestaurantRecord is a restaurant as stored in a seed file.
type RestaurantRecord struct {
	RestaurantID string   `json:"restaurantId"`
	Name         string   `json:"name"`
	City         string   `json:"city"`
	ImageURL     string   `json:"imageUrl"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	OpensAt      string   `json:"opensAt"`
	ClosesAt     string   `json:"closesAt"`
	Attributes   []string `json:"attributes"`
}

// ItemRecord is a catalogue item.
type ItemRecord struct {
	ItemID     string   `json:"itemId"`
	Name       string   `json:"name"`
	ImageURL   string   `json:"imageUrl"`
	Price      float64  `json:"price"`
	Attributes []string `json:"attributes"`
}

// MenuRecord links a restaurant to catalogue items.
type MenuRecord struct {
	RestaurantID string   `json:"restaurantId"`
	ItemIDs      []string `json:"itemIds"`
}

// Dataset is the raw seed document.
type Dataset struct {
	Restaurants []RestaurantRecord `json:"restaurants"`
	Items       []ItemRecord       `json:"items"`
	Menus       []MenuRecord       `json:"menus"`
}

// Catalogue is a validated dataset in domain types.
type Catalogue struct {
	Restaurants []restaurant.Snapshot
	Items       []menu.Item
	Menus       []menu.Menu
}

// Decode parses a JSON seed document.
func Decode(r io.Reader) (*Dataset, error) {
	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}

// Catalogue validates the dataset and converts it to domain types.
// Menus referencing unknown items or restaurants are rejected.
func (ds *Dataset) Catalogue() (*Catalogue, error) {
	cat := &Catalogue{
		Restaurants: make([]restaurant.Snapshot, 0, len(ds.Restaurants)),
		Items:       make([]menu.Item, 0, len(ds.Items)),
		Menus:       make([]menu.Menu, 0, len(ds.Menus)),
	}

	known := make(map[string]struct{}, len(ds.Restaurants))
	for i, rec := range ds.Restaurants {
		s, err := rec.snapshot()
		if err != nil {
			return nil, fmt.Errorf("restaurant %d: %w", i, err)
		}
		if _, dup := known[s.ID()]; dup {
			return nil, fmt.Errorf("restaurant %d: duplicate id %q", i, s.ID())
		}
		known[s.ID()] = struct{}{}
		cat.Restaurants = append(cat.Restaurants, s)
	}

	items := make(map[string]menu.Item, len(ds.Items))
	for i, rec := range ds.Items {
		if rec.ItemID == "" {
			return nil, fmt.Errorf("item %d: itemId is required", i)
		}
		if _, dup := items[rec.ItemID]; dup {
			return nil, fmt.Errorf("item %d: duplicate id %q", i, rec.ItemID)
		}
		it := menu.Item{
			ID:         rec.ItemID,
			Name:       rec.Name,
			ImageURL:   rec.ImageURL,
			Price:      rec.Price,
			Attributes: rec.Attributes,
		}
		items[rec.ItemID] = it
		cat.Items = append(cat.Items, it)
	}

	for i, rec := range ds.Menus {
		if _, ok := known[rec.RestaurantID]; !ok {
			return nil, fmt.Errorf("menu %d: unknown restaurant %q", i, rec.RestaurantID)
		}
		m := menu.Menu{RestaurantID: rec.RestaurantID, Items: make([]menu.Item, 0, len(rec.ItemIDs))}
		for _, id := range rec.ItemIDs {
			it, ok := items[id]
			if !ok {
				return nil, fmt.Errorf("menu %d: unknown item %q", i, id)
			}
			m.Items = append(m.Items, it)
		}
		cat.Menus = append(cat.Menus, m)
	}
	return cat, nil
}

func (rec RestaurantRecord) snapshot() (restaurant.Snapshot, error) {
	opens, err := schedule.Parse(rec.OpensAt)
	if err != nil {
		return restaurant.Snapshot{}, fmt.Errorf("opensAt: %w", err)
	}
	closes, err := schedule.Parse(rec.ClosesAt)
	if err != nil {
		return restaurant.Snapshot{}, fmt.Errorf("closesAt: %w", err)
	}
	return restaurant.New(
		rec.RestaurantID, rec.Name, rec.City, rec.ImageURL,
		geo.Point{Lat: rec.Latitude, Lon: rec.Longitude},
		schedule.Window{OpensAt: opens, ClosesAt: closes},
		rec.Attributes,
	)
}
