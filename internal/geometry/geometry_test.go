package geometry

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestInterpolate(t *testing.T) {
	from := Point{X: 200, Y: 300}
	to := Point{X: 400, Y: 150}

	tests := []struct {
		name     string
		fraction float64
		expected Point
	}{
		{"start", 0, from},
		{"end", 1, to},
		{"forty percent", 0.4, Point{X: 280, Y: 240}},
		{"half", 0.5, Point{X: 300, Y: 225}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Interpolate(from, to, tc.fraction)
			if !approxEqual(got.X, tc.expected.X, 1e-9) || !approxEqual(got.Y, tc.expected.Y, 1e-9) {
				t.Errorf("Interpolate(%v, %v, %v) = %v, expected %v", from, to, tc.fraction, got, tc.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		value, min, max, expected float64
	}{
		{1, 0.5, 3, 1},
		{0.1, 0.5, 3, 0.5},
		{4, 0.5, 3, 3},
		{3, 0.5, 3, 3},
	}
	for _, tc := range tests {
		if got := Clamp(tc.value, tc.min, tc.max); got != tc.expected {
			t.Errorf("Clamp(%v, %v, %v) = %v, expected %v", tc.value, tc.min, tc.max, got, tc.expected)
		}
	}
}

func TestBearing(t *testing.T) {
	// Due north and due east from the same origin
	if b := Bearing(13, 80, 14, 80); !approxEqual(b, 0, 1e-6) {
		t.Errorf("north bearing = %v, expected 0", b)
	}
	if b := Bearing(0, 80, 0, 81); !approxEqual(b, 90, 1e-6) {
		t.Errorf("east bearing = %v, expected 90", b)
	}
}

func TestFrameToLatLon(t *testing.T) {
	f := Frame{OriginLat: 13.0827, OriginLon: 80.2707, MetersPerUnit: 10}

	lat, lon := f.ToLatLon(Point{})
	if lat != f.OriginLat || lon != f.OriginLon {
		t.Fatalf("origin maps to (%v, %v), expected (%v, %v)", lat, lon, f.OriginLat, f.OriginLon)
	}

	// 100 canvas units east should be ~1km away
	lat, lon = f.ToLatLon(Point{X: 100})
	if d := Haversine(f.OriginLat, f.OriginLon, lat, lon); !approxEqual(d, 1000, 1) {
		t.Errorf("distance = %.2fm, expected ~1000m", d)
	}

	// +Y is south
	lat, _ = f.ToLatLon(Point{Y: 100})
	if lat >= f.OriginLat {
		t.Errorf("lat %v should be south of origin %v", lat, f.OriginLat)
	}
}
