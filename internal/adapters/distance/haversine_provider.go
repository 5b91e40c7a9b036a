package distance

import (
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/geo"
)

// HaversineProvider is the production DistanceProvider: straight
// great-circle distance, no road network.
type HaversineProvider struct{}

func NewHaversineProvider() HaversineProvider { return HaversineProvider{} }

func (HaversineProvider) DistanceKm(from, to domain.Coordinates) float64 {
	return geo.Haversine(from, to)
}
