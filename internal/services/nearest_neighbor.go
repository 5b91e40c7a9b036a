package services

import (
	"fmt"
	"math"
	"slices"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

// ExceedsCapacityStatus labels stops that cannot fit any vehicle.
const ExceedsCapacityStatus = "EXCEEDS_CAPACITY"

// NearestNeighborRoute is one closed route built by the nearest-neighbor heuristic.
type NearestNeighborRoute struct {
	VehicleID  int
	StopIDs    []int
	DistanceKm float64
	WeightKg   float64
	// Stops left over once nothing else fits. Only set by BuildRoute.
	UnassignedStopIDs []int
}

// NearestNeighborPlan is the result of the multiple-routes mode.
type NearestNeighborPlan struct {
	Routes []NearestNeighborRoute
	// Stops whose weight alone exceeds the vehicle capacity.
	ExceedsCapacity []int
}

// Build a delivery route using a greedy nearest-neighbor algorithm.
//
// Starting at the depot, the next stop is the closest unvisited one that
// still fits in the vehicle. The route closes (returns to the depot) when
// nothing else fits. Equidistant candidates resolve to the first one in
// input order; that is an implementation detail, not a guarantee.
// Capacity leftovers are reported, never treated as errors.
func BuildRoute(
	depot domain.Coordinates,
	capacityKg float64,
	stops []domain.Stop,
	provider ports.DistanceProvider,
) (*NearestNeighborRoute, error) {
	if err := validateBuildInput(depot, capacityKg, stops); err != nil {
		return nil, fmt.Errorf("build route: %w", err)
	}

	m := NewDistanceMatrix(provider, depot, stops)
	vehicle := domain.NewVehicle(1, capacityKg)

	order, distance, leftover, err := nearestNeighborTour(m, stops, identityOrder(len(stops)), vehicle)
	if err != nil {
		return nil, fmt.Errorf("build route: %w", err)
	}

	return &NearestNeighborRoute{
		VehicleID:         vehicle.VehicleID,
		StopIDs:           idsForOrder(stops, order),
		DistanceKm:        distance,
		WeightKg:          vehicle.LoadKg,
		UnassignedStopIDs: idsForOrder(stops, leftover),
	}, nil
}

// Build as many routes as needed to serve every stop that fits a vehicle.
//
// Stops heavier than the capacity on their own are excluded up front and
// reported in ExceedsCapacity. The remaining stops are consumed by successive
// nearest-neighbor routes, each starting empty at the depot.
func BuildRoutes(
	depot domain.Coordinates,
	capacityKg float64,
	stops []domain.Stop,
	provider ports.DistanceProvider,
) (*NearestNeighborPlan, error) {
	if err := validateBuildInput(depot, capacityKg, stops); err != nil {
		return nil, fmt.Errorf("build routes: %w", err)
	}

	m := NewDistanceMatrix(provider, depot, stops)

	plan := &NearestNeighborPlan{
		Routes:          []NearestNeighborRoute{},
		ExceedsCapacity: []int{},
	}

	remaining := make([]int, 0, len(stops))
	for pos, s := range stops {
		if s.WeightKg > capacityKg {
			plan.ExceedsCapacity = append(plan.ExceedsCapacity, s.ID)
			continue
		}
		remaining = append(remaining, pos)
	}

	for len(remaining) > 0 {
		vehicle := domain.NewVehicle(len(plan.Routes)+1, capacityKg)

		order, distance, leftover, err := nearestNeighborTour(m, stops, remaining, vehicle)
		if err != nil {
			return nil, fmt.Errorf("build routes: vehicle %d: %w", vehicle.VehicleID, err)
		}
		// Every remaining stop fits an empty vehicle, so a route is never empty.
		if len(order) == 0 {
			return nil, fmt.Errorf("build routes: vehicle %d: no stop fits an empty vehicle", vehicle.VehicleID)
		}

		plan.Routes = append(plan.Routes, NearestNeighborRoute{
			VehicleID:  vehicle.VehicleID,
			StopIDs:    idsForOrder(stops, order),
			DistanceKm: distance,
			WeightKg:   vehicle.LoadKg,
		})
		remaining = leftover
	}

	return plan, nil
}

// nearestNeighborTour visits candidates (stop positions) greedily from the
// depot while they fit in vehicle. It returns the visiting order, the closed
// tour length, and the candidates left behind in their original order.
func nearestNeighborTour(
	m *DistanceMatrix,
	stops []domain.Stop,
	candidates []int,
	vehicle *domain.Vehicle,
) ([]int, float64, []int, error) {
	available := slices.Clone(candidates)
	order := make([]int, 0, len(available))
	current := 0
	distance := 0.0

	for len(available) > 0 {
		best := -1
		bestDistance := math.Inf(1)

		// Select next stop by minimum distance among those that fit (greedy step).
		for k, pos := range available {
			if !vehicle.Fits(stops[pos].WeightKg) {
				continue
			}
			d := m.Between(current, pos+1)
			if d < bestDistance {
				bestDistance = d
				best = k
			}
		}

		if best < 0 {
			break
		}

		pos := available[best]
		if err := vehicle.Load(stops[pos]); err != nil {
			return nil, 0, nil, err
		}

		distance += bestDistance
		order = append(order, pos)
		current = pos + 1
		available = slices.Delete(available, best, best+1)
	}

	// Return leg to the depot.
	if len(order) > 0 {
		distance += m.Between(current, 0)
	}

	return order, distance, available, nil
}

func validateBuildInput(depot domain.Coordinates, capacityKg float64, stops []domain.Stop) error {
	if err := depot.Validate("depot"); err != nil {
		return err
	}
	if err := validateCapacity(capacityKg); err != nil {
		return err
	}
	return domain.ValidateStops(stops)
}
