package proximity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/qeats/internal/domain/geo"
	"github.com/kailas-cloud/qeats/internal/domain/restaurant"
	"github.com/kailas-cloud/qeats/internal/domain/schedule"
)

// entrySeparator joins serialized snapshots inside one bucket value.
const entrySeparator = ';'

// escapedSeparator is the JSON escape for ';'. It is only ever emitted inside
// JSON strings, so splitting on the raw separator never cuts a document.
var escapedSeparator = []byte(`\u003b`)

// snapshotJSON is the cache wire format of a restaurant snapshot.
type snapshotJSON struct {
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

func toJSON(s *restaurant.Snapshot) snapshotJSON {
	loc := s.Location()
	hours := s.Hours()
	return snapshotJSON{
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

func fromJSON(d snapshotJSON) (restaurant.Snapshot, error) {
	opens, err := schedule.Parse(d.OpensAt)
	if err != nil {
		return restaurant.Snapshot{}, fmt.Errorf("opensAt: %w", err)
	}
	closes, err := schedule.Parse(d.ClosesAt)
	if err != nil {
		return restaurant.Snapshot{}, fmt.Errorf("closesAt: %w", err)
	}
	return restaurant.New(
		d.RestaurantID, d.Name, d.City, d.ImageURL,
		geo.Point{Lat: d.Latitude, Lon: d.Longitude},
		schedule.Window{OpensAt: opens, ClosesAt: closes},
		d.Attributes,
	)
}

// encodeSnapshot renders one snapshot as a single-line JSON document without raw ';'.
func encodeSnapshot(s *restaurant.Snapshot) ([]byte, error) {
	data, err := json.Marshal(toJSON(s))
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot %s: %w", s.ID(), err)
	}
	return bytes.ReplaceAll(data, []byte{entrySeparator}, escapedSeparator), nil
}

// encodeSnapshots joins the encoded snapshots with the entry separator.
func encodeSnapshots(list []restaurant.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	for i := range list {
		data, err := encodeSnapshot(&list[i])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte(entrySeparator)
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// decodeSnapshots splits a bucket value and parses every segment.
// Any malformed segment fails the whole value.
func decodeSnapshots(data []byte) ([]restaurant.Snapshot, error) {
	segments := bytes.Split(data, []byte{entrySeparator})
	out := make([]restaurant.Snapshot, 0, len(segments))
	for i, seg := range segments {
		var d snapshotJSON
		if err := json.Unmarshal(seg, &d); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		s, err := fromJSON(d)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}
