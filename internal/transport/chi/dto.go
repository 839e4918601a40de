package chi

import (
	"github.com/kailas-cloud/qeats/internal/domain/menu"
	"github.com/kailas-cloud/qeats/internal/domain/restaurant"
)

type restaurantResponse struct {
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

type getRestaurantsResponse struct {
	Restaurants []restaurantResponse `json:"restaurants"`
}

type itemResponse struct {
	ItemID     string   `json:"itemId"`
	Name       string   `json:"name"`
	ImageURL   string   `json:"imageUrl"`
	Price      float64  `json:"price"`
	Attributes []string `json:"attributes"`
}

type menuResponse struct {
	RestaurantID string         `json:"restaurantId"`
	Items        []itemResponse `json:"items"`
}

type getMenuResponse struct {
	Menu menuResponse `json:"menu"`
}

type getItemResponse struct {
	Item itemResponse `json:"item"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func restaurantsToResponse(list []restaurant.Snapshot) []restaurantResponse {
	out := make([]restaurantResponse, len(list))
	for i := range list {
		s := &list[i]
		loc := s.Location()
		hours := s.Hours()
		attrs := s.Attributes()
		if attrs == nil {
			attrs = []string{}
		}
		out[i] = restaurantResponse{
			RestaurantID: s.ID(),
			Name:         s.Name(),
			City:         s.City(),
			ImageURL:     s.ImageURL(),
			Latitude:     loc.Lat,
			Longitude:    loc.Lon,
			OpensAt:      hours.OpensAt.String(),
			ClosesAt:     hours.ClosesAt.String(),
			Attributes:   attrs,
		}
	}
	return out
}

func itemToResponse(it *menu.Item) itemResponse {
	attrs := it.Attributes
	if attrs == nil {
		attrs = []string{}
	}
	return itemResponse{
		ItemID:     it.ID,
		Name:       it.Name,
		ImageURL:   it.ImageURL,
		Price:      it.Price,
		Attributes: attrs,
	}
}

func menuToResponse(m *menu.Menu) menuResponse {
	items := make([]itemResponse, len(m.Items))
	for i := range m.Items {
		items[i] = itemToResponse(&m.Items[i])
	}
	return menuResponse{RestaurantID: m.RestaurantID, Items: items}
}
