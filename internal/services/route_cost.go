package services

import (
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/geo"
	"fleet-dispatch-service/internal/ports"
)

// DistanceMatrix holds pairwise distances between the depot (node 0) and a
// fixed list of stops (node k+1 is stops[k]). Routes evaluated against the
// matrix are permutations of stop positions 0..n-1, not stop ids.
type DistanceMatrix struct {
	n int
	d []float64
}

// NewDistanceMatrix precomputes every depot/stop leg using provider.
// A nil provider falls back to Haversine.
func NewDistanceMatrix(provider ports.DistanceProvider, depot domain.Coordinates, stops []domain.Stop) *DistanceMatrix {
	provider = providerOrDefault(provider)

	nodes := make([]domain.Coordinates, 0, len(stops)+1)
	nodes = append(nodes, depot)
	for _, s := range stops {
		nodes = append(nodes, s.Location)
	}

	size := len(nodes)
	d := make([]float64, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if i == j {
				continue
			}
			d[i*size+j] = provider.DistanceKm(nodes[i], nodes[j])
		}
	}

	return &DistanceMatrix{n: len(stops), d: d}
}

// Stops returns the number of stops the matrix was built for.
func (m *DistanceMatrix) Stops() int { return m.n }

// Between returns the distance between two node indices (0 = depot).
func (m *DistanceMatrix) Between(from, to int) float64 {
	return m.d[from*(m.n+1)+to]
}

// RouteCost returns the length of depot -> order... -> depot in km.
// An empty order costs nothing.
func (m *DistanceMatrix) RouteCost(order []int) float64 {
	if len(order) == 0 {
		return 0
	}

	cost := m.Between(0, order[0]+1)
	for k := 1; k < len(order); k++ {
		cost += m.Between(order[k-1]+1, order[k]+1)
	}
	cost += m.Between(order[len(order)-1]+1, 0)

	return cost
}

// RouteDistanceKm is the stand-alone form of RouteCost over stops in visiting order.
func RouteDistanceKm(provider ports.DistanceProvider, depot domain.Coordinates, ordered []domain.Stop) float64 {
	if len(ordered) == 0 {
		return 0
	}
	provider = providerOrDefault(provider)

	total := 0.0
	current := depot
	for _, s := range ordered {
		total += provider.DistanceKm(current, s.Location)
		current = s.Location
	}
	total += provider.DistanceKm(current, depot)

	return total
}

func providerOrDefault(p ports.DistanceProvider) ports.DistanceProvider {
	if p == nil {
		return ports.DistanceFunc(geo.Haversine)
	}
	return p
}

// improvementPercent is the relative reduction from before to after.
func improvementPercent(before, after float64) float64 {
	if before <= 0 {
		return 0
	}
	return (before - after) / before * 100
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func idsForOrder(stops []domain.Stop, order []int) []int {
	ids := make([]int, len(order))
	for k, pos := range order {
		ids[k] = stops[pos].ID
	}
	return ids
}

func stopsForOrder(stops []domain.Stop, order []int) []domain.Stop {
	out := make([]domain.Stop, len(order))
	for k, pos := range order {
		out[k] = stops[pos]
	}
	return out
}
