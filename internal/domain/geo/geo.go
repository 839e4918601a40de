package geo

import (
	"math"

	"github.com/mmcloughlin/geohash"
)

// EarthRadiusKm is the Earth radius used for haversine distance.
const EarthRadiusKm = 6372.8

// BucketPrecision is the geohash length used for proximity cache keys.
// A 7-character cell is roughly 150m x 150m, much smaller than any serving radius.
const BucketPrecision = 7

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether latitude is in [-90,90] and longitude in [-180,180].
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// BucketKey returns the fixed-precision geohash cell for p.
func BucketKey(p Point) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lon, BucketPrecision)
}

// DistanceKm returns the great-circle distance between a and b in kilometers.
func DistanceKm(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Pow(math.Sin(dLon/2), 2)*math.Cos(lat1)*math.Cos(lat2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}
