package restaurant

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/qeats/internal/domain/geo"
	"github.com/kailas-cloud/qeats/internal/domain/schedule"
)

// Snapshot is the immutable projection of a restaurant used in caching and responses.
type Snapshot struct {
	id         string
	name       string
	city       string
	imageURL   string
	location   geo.Point
	hours      schedule.Window
	attributes []string
}

// New validates and creates a Snapshot.
func New(
	id, name, city, imageURL string,
	location geo.Point, hours schedule.Window, attributes []string,
) (Snapshot, error) {
	if id == "" {
		return Snapshot{}, fmt.Errorf("restaurant ID is required")
	}
	if !location.Valid() {
		return Snapshot{}, fmt.Errorf("restaurant %s: invalid coordinates (%f, %f)", id, location.Lat, location.Lon)
	}
	return Snapshot{
		id:         id,
		name:       name,
		city:       city,
		imageURL:   imageURL,
		location:   location,
		hours:      hours,
		attributes: slices.Clone(attributes),
	}, nil
}

// ID returns the restaurant identifier.
func (s *Snapshot) ID() string { return s.id }

// Name returns the display name.
func (s *Snapshot) Name() string { return s.name }

// City returns the city.
func (s *Snapshot) City() string { return s.city }

// ImageURL returns the image reference.
func (s *Snapshot) ImageURL() string { return s.imageURL }

// Location returns the restaurant coordinates.
func (s *Snapshot) Location() geo.Point { return s.location }

// Hours returns the opening window.
func (s *Snapshot) Hours() schedule.Window { return s.hours }

// Attributes returns a copy of the attribute tags (cuisines).
func (s *Snapshot) Attributes() []string { return slices.Clone(s.attributes) }

// ServesAt reports whether the restaurant is open at t and within radiusKm of p.
func (s *Snapshot) ServesAt(p geo.Point, t schedule.TimeOfDay, radiusKm float64) bool {
	return s.hours.IsOpen(t) && geo.DistanceKm(p, s.location) <= radiusKm
}

// Equal reports field-by-field equality.
func (s *Snapshot) Equal(o *Snapshot) bool {
	return s.id == o.id &&
		s.name == o.name &&
		s.city == o.city &&
		s.imageURL == o.imageURL &&
		s.location == o.location &&
		s.hours == o.hours &&
		slices.Equal(s.attributes, o.attributes)
}

// Filter keeps snapshots serving p at t within radiusKm, preserving order.
func Filter(in []Snapshot, p geo.Point, t schedule.TimeOfDay, radiusKm float64) []Snapshot {
	out := make([]Snapshot, 0, len(in))
	for i := range in {
		if in[i].ServesAt(p, t, radiusKm) {
			out = append(out, in[i])
		}
	}
	return out
}
