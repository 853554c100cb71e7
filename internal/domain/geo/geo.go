// Package geo provides geographic points and distance calculation.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371008.8

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `yaml:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `yaml:"lng" json:"lng" validate:"gte=-180,lte=180"`
}

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Within reports whether p lies within radius meters of center.
func Within(p, center Point, radiusMeters float64) bool {
	return DistanceMeters(p, center) <= radiusMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
