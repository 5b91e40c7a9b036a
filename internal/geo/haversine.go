// Package geo holds great-circle geometry over domain coordinates.
package geo

import (
	"math"

	"fleet-dispatch-service/internal/domain"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance between a and b in kilometres.
// Inputs are expected to be validated; non-finite values propagate as NaN.
func Haversine(a, b domain.Coordinates) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h a hair above 1 for antipodal points.
	if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Point converts coordinates to an orb point ([lon, lat]).
func Point(c domain.Coordinates) orb.Point {
	return orb.Point{c.Lon, c.Lat}
}
