package geometry

import "math"

const earthRadiusMeters = 6371000

// metersPerDegreeLat is the length of one degree of latitude on the mean sphere
const metersPerDegreeLat = earthRadiusMeters * math.Pi / 180

// Point is a coordinate on the 1200x800 network canvas
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Interpolate linearly interpolates between two points.
// fraction 0 yields start, 1 yields end.
func Interpolate(start, end Point, fraction float64) Point {
	return Point{
		X: start.X + (end.X-start.X)*fraction,
		Y: start.Y + (end.Y-start.Y)*fraction,
	}
}

// Midpoint returns the point halfway between a and b
func Midpoint(a, b Point) Point {
	return Interpolate(a, b, 0.5)
}

// Clamp constrains a value between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Haversine calculates the distance between two points in meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Bearing calculates the bearing from point 1 to point 2 in degrees (0-360)
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	x := math.Sin(deltaLambda) * math.Cos(phi2)
	y := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)

	bearing := math.Atan2(x, y) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// Frame places canvas coordinates on the globe: the canvas origin sits at
// (OriginLat, OriginLon), +X points east and +Y points south.
type Frame struct {
	OriginLat     float64
	OriginLon     float64
	MetersPerUnit float64
}

// ToLatLon converts a canvas point to (lat, lon) using an equirectangular
// approximation, which is fine at the scale of a station area.
func (f Frame) ToLatLon(p Point) (float64, float64) {
	north := -p.Y * f.MetersPerUnit
	east := p.X * f.MetersPerUnit
	lat := f.OriginLat + north/metersPerDegreeLat
	lon := f.OriginLon + east/(metersPerDegreeLat*math.Cos(f.OriginLat*math.Pi/180))
	return lat, lon
}
