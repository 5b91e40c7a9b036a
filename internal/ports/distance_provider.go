package ports

import "fleet-dispatch-service/internal/domain"

// Contract for great-circle (or any symmetric) distance between two points.
type DistanceProvider interface {
	// Return the distance in kilometres between two coordinates.
	DistanceKm(from, to domain.Coordinates) float64
}

// DistanceFunc adapts a plain function to DistanceProvider.
type DistanceFunc func(from, to domain.Coordinates) float64

func (f DistanceFunc) DistanceKm(from, to domain.Coordinates) float64 { return f(from, to) }
