package distance

import (
	"sync/atomic"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/geo"
)

// MockPair fixes the distance between two points, in both directions.
type MockPair struct {
	From, To domain.Coordinates
	Km       float64
}

// MockDistanceProvider answers from a fixed table and falls back to
// Haversine for pairs it does not know.
type MockDistanceProvider struct {
	m     map[[2]domain.Coordinates]float64
	calls atomic.Int64
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[[2]domain.Coordinates]float64, 2*len(pairs))
	for _, p := range pairs {
		m[[2]domain.Coordinates{p.From, p.To}] = p.Km
		m[[2]domain.Coordinates{p.To, p.From}] = p.Km
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) DistanceKm(from, to domain.Coordinates) float64 {
	p.calls.Add(1)
	if from == to {
		return 0
	}
	if km, ok := p.m[[2]domain.Coordinates{from, to}]; ok {
		return km
	}
	return geo.Haversine(from, to)
}

// Calls returns how many lookups were made.
func (p *MockDistanceProvider) Calls() int { return int(p.calls.Load()) }
