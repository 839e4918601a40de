package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestDistanceKm_SamePoint(t *testing.T) {
	points := []Point{{0, 0}, {12.9, 77.6}, {-33.86, 151.21}, {89.9, -179.9}}
	for _, p := range points {
		if d := DistanceKm(p, p); !almost(d, 0, 1e-9) {
			t.Errorf("DistanceKm(%v, %v) = %f, want 0", p, p, d)
		}
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	pairs := [][2]Point{
		{{12.9, 77.6}, {12.918, 77.6}},
		{{40.7128, -74.0060}, {51.5074, -0.1278}},
		{{-33.86, 151.21}, {35.68, 139.69}},
		{{0, 179.9}, {0, -179.9}},
	}
	for _, p := range pairs {
		ab := DistanceKm(p[0], p[1])
		ba := DistanceKm(p[1], p[0])
		if !almost(ab, ba, 1e-9) {
			t.Errorf("asymmetric distance: %f vs %f", ab, ba)
		}
	}
}

func TestDistanceKm_NewYork_London(t *testing.T) {
	// ~5,570 km
	d := DistanceKm(Point{40.7128, -74.0060}, Point{51.5074, -0.1278})
	if !almost(d, 5570, 30) {
		t.Fatalf("want ~5570km, got %.1fkm", d)
	}
}

func TestDistanceKm_Antipodal(t *testing.T) {
	d := DistanceKm(Point{0, 0}, Point{0, 180})
	if !almost(d, math.Pi*EarthRadiusKm, 1e-6) {
		t.Fatalf("want %f, got %f", math.Pi*EarthRadiusKm, d)
	}
}

func TestDistanceKm_OneDegreeLatitude(t *testing.T) {
	d := DistanceKm(Point{12.0, 77.6}, Point{13.0, 77.6})
	want := EarthRadiusKm * math.Pi / 180
	if !almost(d, want, 1e-6) {
		t.Fatalf("want %f, got %f", want, d)
	}
}

func TestBucketKey_Length(t *testing.T) {
	k := BucketKey(Point{12.9, 77.6})
	if len(k) != BucketPrecision {
		t.Fatalf("want %d chars, got %q", BucketPrecision, k)
	}
}

func TestBucketKey_KnownValue(t *testing.T) {
	// Reference cell from the geohash definition (57.64911, 10.40744 -> u4pruydqqvj).
	if k := BucketKey(Point{57.64911, 10.40744}); k != "u4pruyd" {
		t.Fatalf("want u4pruyd, got %q", k)
	}
}

func TestBucketKey_Deterministic(t *testing.T) {
	p := Point{28.4900591, 77.536386}
	if BucketKey(p) != BucketKey(p) {
		t.Fatal("bucket key must be deterministic")
	}
}

func TestBucketKey_NearbyPointsShareBucket(t *testing.T) {
	a := BucketKey(Point{57.64911, 10.40744})
	b := BucketKey(Point{57.64912, 10.40745})
	if a != b {
		t.Fatalf("points 1m apart should share a bucket: %q vs %q", a, b)
	}
}

func TestBucketKey_DistantPointsDiffer(t *testing.T) {
	a := BucketKey(Point{12.9, 77.6})
	b := BucketKey(Point{12.918, 77.6})
	if a == b {
		t.Fatalf("points 2km apart should not share a bucket: %q", a)
	}
}

func TestPoint_Valid(t *testing.T) {
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{0, 0}, true},
		{Point{90, 180}, true},
		{Point{-90, -180}, true},
		{Point{90.0001, 0}, false},
		{Point{0, -180.0001}, false},
	}
	for _, tc := range tests {
		if got := tc.p.Valid(); got != tc.want {
			t.Errorf("%v.Valid() = %v, want %v", tc.p, got, tc.want)
		}
	}
}
