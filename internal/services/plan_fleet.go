package services

import (
	"context"
	"fmt"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

const defaultFleetWorkers = 4

type PlanFleetRequest struct {
	Depot      domain.Coordinates
	CapacityKg float64
	Stops      []domain.Stop
	Tabu       TabuOptions
	// Upper bound on routes refined at the same time.
	Workers int
}

// FleetRoute is one vehicle's nearest-neighbor route and its tabu refinement.
type FleetRoute struct {
	VehicleID          int
	InitialRoute       RouteSummary
	OptimizedRoute     RouteSummary
	ImprovementPercent float64
	Iterations         int
}

type FleetPlan struct {
	Routes          []FleetRoute
	ExceedsCapacity []int
	TotalDistanceKm float64
}

// PlanFleet splits the stops into as many capacity-feasible routes as needed
// and refines every route independently.
//
// Refinements run on a bounded worker pool. Each refinement is a pure
// computation, so ctx is only checked before a route starts; a cancelled
// context stops the remaining routes and returns its error.
func PlanFleet(ctx context.Context, req PlanFleetRequest, provider ports.DistanceProvider) (*FleetPlan, error) {
	split, err := BuildRoutes(req.Depot, req.CapacityKg, req.Stops, provider)
	if err != nil {
		return nil, fmt.Errorf("plan fleet: %w", err)
	}

	workers := req.Workers
	if workers <= 0 {
		workers = defaultFleetWorkers
	}

	lookup := StopLookup(req.Stops)
	routes := make([]FleetRoute, len(split.Routes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, r := range split.Routes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			refined, err := RefineTabu(req.Depot, r.StopIDs, lookup, req.Tabu, provider)
			if err != nil {
				return fmt.Errorf("plan fleet: refine vehicle %d: %w", r.VehicleID, err)
			}

			// Each goroutine owns its own slot.
			routes[i] = FleetRoute{
				VehicleID: r.VehicleID,
				InitialRoute: RouteSummary{
					StopIDs:    r.StopIDs,
					DistanceKm: r.DistanceKm,
					WeightKg:   r.WeightKg,
					Algorithm:  AlgorithmNearestNeighbor,
				},
				OptimizedRoute: RouteSummary{
					StopIDs:    refined.StopIDs,
					DistanceKm: refined.FinalDistanceKm,
					WeightKg:   r.WeightKg,
					Algorithm:  AlgorithmTabuSearch,
				},
				ImprovementPercent: refined.ImprovementPercent,
				Iterations:         refined.Iterations,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := &FleetPlan{Routes: routes, ExceedsCapacity: split.ExceedsCapacity}
	for _, r := range routes {
		plan.TotalDistanceKm += r.OptimizedRoute.DistanceKm
	}

	return plan, nil
}
