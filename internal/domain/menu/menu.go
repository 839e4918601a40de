package menu

import "slices"

// Item is a dish served by one or more restaurants.
type Item struct {
	ID         string
	Name       string
	ImageURL   string
	Price      float64
	Attributes []string
}

// Menu lists the items of a single restaurant.
type Menu struct {
	RestaurantID string
	Items        []Item
}

// Item returns the menu item with the given ID.
func (m *Menu) Item(id string) (Item, bool) {
	i := slices.IndexFunc(m.Items, func(it Item) bool { return it.ID == id })
	if i < 0 {
		return Item{}, false
	}
	return m.Items[i], true
}

// ItemIDs returns the distinct item IDs in first-seen order.
func ItemIDs(items []Item) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		ids = append(ids, it.ID)
	}
	return ids
}
