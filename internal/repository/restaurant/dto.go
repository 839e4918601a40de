package restaurant

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/kailas-cloud/qeats/internal/domain/geo"
	"github.com/kailas-cloud/qeats/internal/domain/menu"
	domrest "github.com/kailas-cloud/qeats/internal/domain/restaurant"
	"github.com/kailas-cloud/qeats/internal/domain/schedule"
)

// restaurantRow is the restaurants table.
type restaurantRow struct {
	RestaurantID string         `gorm:"column:restaurant_id;primaryKey"`
	Name         string         `gorm:"column:name;not null;index"`
	City         string         `gorm:"column:city"`
	ImageURL     string         `gorm:"column:image_url"`
	Latitude     float64        `gorm:"column:latitude;not null"`
	Longitude    float64        `gorm:"column:longitude;not null"`
	OpensAt      string         `gorm:"column:opens_at;type:varchar(8);not null"`
	ClosesAt     string         `gorm:"column:closes_at;type:varchar(8);not null"`
	Attributes   pq.StringArray `gorm:"column:attributes;type:text[]"`
}

func (restaurantRow) TableName() string { return "restaurants" }

// itemRow is the items catalogue table.
type itemRow struct {
	ItemID     string         `gorm:"column:item_id;primaryKey"`
	Name       string         `gorm:"column:name;not null;index"`
	ImageURL   string         `gorm:"column:image_url"`
	Price      float64        `gorm:"column:price;not null;default:0"`
	Attributes pq.StringArray `gorm:"column:attributes;type:text[]"`
}

func (itemRow) TableName() string { return "items" }

// menuItemRow links a restaurant to an item; position keeps menu order.
type menuItemRow struct {
	RestaurantID string `gorm:"column:restaurant_id;primaryKey"`
	ItemID       string `gorm:"column:item_id;primaryKey;index"`
	Position     int    `gorm:"column:position;not null"`
}

func (menuItemRow) TableName() string { return "menu_items" }

func snapshotFromRow(r *restaurantRow) (domrest.Snapshot, error) {
	opens, err := schedule.Parse(r.OpensAt)
	if err != nil {
		return domrest.Snapshot{}, fmt.Errorf("restaurant %s opens_at: %w", r.RestaurantID, err)
	}
	closes, err := schedule.Parse(r.ClosesAt)
	if err != nil {
		return domrest.Snapshot{}, fmt.Errorf("restaurant %s closes_at: %w", r.RestaurantID, err)
	}
	return domrest.New(
		r.RestaurantID, r.Name, r.City, r.ImageURL,
		geo.Point{Lat: r.Latitude, Lon: r.Longitude},
		schedule.Window{OpensAt: opens, ClosesAt: closes},
		r.Attributes,
	)
}

func snapshotsFromRows(rows []restaurantRow) ([]domrest.Snapshot, error) {
	out := make([]domrest.Snapshot, 0, len(rows))
	for i := range rows {
		s, err := snapshotFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func rowFromSnapshot(s *domrest.Snapshot) restaurantRow {
	loc := s.Location()
	hours := s.Hours()
	return restaurantRow{
		RestaurantID: s.ID(),
		Name:         s.Name(),
		City:         s.City(),
		ImageURL:     s.ImageURL(),
		Latitude:     loc.Lat,
		Longitude:    loc.Lon,
		OpensAt:      hours.OpensAt.String(),
		ClosesAt:     hours.ClosesAt.String(),
		Attributes:   s.Attributes(),
	}
}

func itemFromRow(r *itemRow) menu.Item {
	return menu.Item{
		ID:         r.ItemID,
		Name:       r.Name,
		ImageURL:   r.ImageURL,
		Price:      r.Price,
		Attributes: []string(r.Attributes),
	}
}

func itemsFromRows(rows []itemRow) []menu.Item {
	out := make([]menu.Item, len(rows))
	for i := range rows {
		out[i] = itemFromRow(&rows[i])
	}
	return out
}

func rowFromItem(it *menu.Item) itemRow {
	return itemRow{
		ItemID:     it.ID,
		Name:       it.Name,
		ImageURL:   it.ImageURL,
		Price:      it.Price,
		Attributes: it.Attributes,
	}
}
