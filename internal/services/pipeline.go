package services

import (
	"fmt"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

// Algorithm labels reported with each stage.
const (
	AlgorithmNearestNeighbor = "nearest_neighbor"
	AlgorithmTabuSearch      = "tabu_search"
	AlgorithmGenetic         = "genetic"
)

type PipelineRequest struct {
	Depot      domain.Coordinates
	CapacityKg float64
	Stops      []domain.Stop
	Tabu       TabuOptions
}

// RouteSummary describes one stage's route.
type RouteSummary struct {
	StopIDs    []int
	DistanceKm float64
	WeightKg   float64
	Algorithm  string
}

type PipelineResult struct {
	InitialRoute       RouteSummary
	OptimizedRoute     RouteSummary
	DistanceReducedKm  float64
	ImprovementPercent float64
	Iterations         int
	UnservedStopIDs    []int
	History            []IterationStat
	Tabu               TabuOptions
}

// RunPipeline seeds a capacity-feasible route with the nearest-neighbor
// builder and polishes it with tabu search.
//
// Stops that do not fit the vehicle are reported in UnservedStopIDs. When no
// stop fits at all, both routes are empty and no search runs.
func RunPipeline(req PipelineRequest, provider ports.DistanceProvider) (*PipelineResult, error) {
	seed, err := BuildRoute(req.Depot, req.CapacityKg, req.Stops, provider)
	if err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}

	refined, err := RefineTabu(req.Depot, seed.StopIDs, StopLookup(req.Stops), req.Tabu, provider)
	if err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}

	return &PipelineResult{
		InitialRoute: RouteSummary{
			StopIDs:    seed.StopIDs,
			DistanceKm: seed.DistanceKm,
			WeightKg:   seed.WeightKg,
			Algorithm:  AlgorithmNearestNeighbor,
		},
		OptimizedRoute: RouteSummary{
			StopIDs:    refined.StopIDs,
			DistanceKm: refined.FinalDistanceKm,
			// Reordering does not change the load.
			WeightKg:  seed.WeightKg,
			Algorithm: AlgorithmTabuSearch,
		},
		DistanceReducedKm:  refined.InitialDistanceKm - refined.FinalDistanceKm,
		ImprovementPercent: refined.ImprovementPercent,
		Iterations:         refined.Iterations,
		UnservedStopIDs:    seed.UnassignedStopIDs,
		History:            refined.History,
		Tabu:               refined.Options,
	}, nil
}
