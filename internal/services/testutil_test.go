package services

import (
	"math"
	"math/rand/v2"
	"testing"

	"fleet-dispatch-service/internal/domain"

	"github.com/stretchr/testify/require"
)

// Florianópolis downtown, used as the depot in most fixtures.
var testDepot = domain.Coordinates{Lat: -27.5969, Lon: -48.5495}

// randomStops scatters n stops within ~0.2 degrees of the depot with weights in [1, maxWeight).
func randomStops(rng *rand.Rand, n int, maxWeight float64) []domain.Stop {
	stops := make([]domain.Stop, n)
	for i := range stops {
		stops[i] = domain.Stop{
			ID: 100 + i,
			Location: domain.Coordinates{
				Lat: testDepot.Lat + (rng.Float64()-0.5)*0.4,
				Lon: testDepot.Lon + (rng.Float64()-0.5)*0.4,
			},
			WeightKg: 1 + rng.Float64()*(maxWeight-1),
		}
	}
	return stops
}

// circleStops places n stops evenly on a circle of the given radius (degrees)
// around the depot, in angular order.
func circleStops(n int, radius float64) []domain.Stop {
	stops := make([]domain.Stop, n)
	for i := range stops {
		angle := 2 * math.Pi * float64(i) / float64(n)
		stops[i] = domain.Stop{
			ID: i + 1,
			Location: domain.Coordinates{
				Lat: testDepot.Lat + radius*math.Sin(angle),
				Lon: testDepot.Lon + radius*math.Cos(angle),
			},
			WeightKg: 1,
		}
	}
	return stops
}

// bruteForceOptimum returns the shortest closed tour over all permutations.
func bruteForceOptimum(t *testing.T, depot domain.Coordinates, stops []domain.Stop) float64 {
	t.Helper()
	require.LessOrEqual(t, len(stops), 8, "brute force is only meant for tiny instances")

	m := NewDistanceMatrix(nil, depot, stops)
	order := identityOrder(len(stops))
	best := math.Inf(1)

	var permute func(k int)
	permute = func(k int) {
		if k == len(order) {
			best = math.Min(best, m.RouteCost(order))
			return
		}
		for i := k; i < len(order); i++ {
			order[k], order[i] = order[i], order[k]
			permute(k + 1)
			order[k], order[i] = order[i], order[k]
		}
	}
	permute(0)

	return best
}

func routeWeight(t *testing.T, stops []domain.Stop, ids []int) float64 {
	t.Helper()
	lookup := StopLookup(stops)
	total := 0.0
	for _, id := range ids {
		s, ok := lookup[id]
		require.True(t, ok, "unknown stop id %d", id)
		total += s.WeightKg
	}
	return total
}
