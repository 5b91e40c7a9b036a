package dto

import (
	"fleet-dispatch-service/internal/services"

	"github.com/paulmach/orb/geojson"
)

type GeneticParamsRequest struct {
	PopulationSize         LenientNumber `json:"population_size"`
	Generations            LenientNumber `json:"generations"`
	CrossoverRate          LenientNumber `json:"crossover_rate"`
	MutationRate           LenientNumber `json:"mutation_rate"`
	InversionRate          LenientNumber `json:"inversion_rate"`
	EliteCount             LenientNumber `json:"elite_count"`
	TournamentSize         LenientNumber `json:"tournament_size"`
	MaxStagnantGenerations LenientNumber `json:"max_stagnant_generations"`
}

type GeneticRequest struct {
	StopSource
	Params GeneticParamsRequest `json:"params"`
	// Fixes the random source. Seeded runs are reproducible and cached.
	Seed *uint64 `json:"seed"`
}

type GeneticResponse struct {
	OrderedStopIDs     []int                      `json:"ordered_stop_ids"`
	CoordinateTrace    []services.TracePoint      `json:"coordinate_trace"`
	TotalDistanceKm    float64                    `json:"total_distance_km"`
	GenerationsRun     int                        `json:"generations_run"`
	ElapsedSeconds     float64                    `json:"elapsed_seconds"`
	ImprovementPercent float64                    `json:"improvement_percent"`
	UsedParameters     services.GeneticParams     `json:"used_parameters"`
	FitnessHistory     []services.GenerationStat  `json:"fitness_history"`
	Seed               uint64                     `json:"seed"`
	GeoJSON            *geojson.FeatureCollection `json:"geojson,omitempty"`
}

type TabuRequest struct {
	StopSource
	CapacityKg float64            `json:"capacity_kg" validate:"gt=0"`
	Tabu       TabuOptionsRequest `json:"tabu"`
}

type TabuResponse struct {
	InitialRoute       RouteSummaryResponse     `json:"initial_route"`
	OptimizedRoute     RouteSummaryResponse     `json:"optimized_route"`
	DistanceReducedKm  float64                  `json:"distance_reduced_km"`
	ImprovementPercent float64                  `json:"improvement_percent"`
	Iterations         int                      `json:"iterations"`
	UnservedStopIDs    []int                    `json:"unserved_stop_ids"`
	History            []services.IterationStat `json:"history"`
	UsedParameters     services.TabuOptions     `json:"used_parameters"`
}

type CompareRequest struct {
	StopSource
	Params GeneticParamsRequest `json:"params"`
	Seed   *uint64              `json:"seed"`
}

type AlgorithmResultResponse struct {
	Algorithm      string  `json:"algorithm"`
	StopIDs        []int   `json:"stop_ids"`
	DistanceKm     float64 `json:"distance_km"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Generations    int     `json:"generations,omitempty"`
}

type SavingResponse struct {
	Km      float64 `json:"km"`
	Percent float64 `json:"percent"`
}

type CompareResponse struct {
	Genetic AlgorithmResultResponse `json:"genetic"`
	Greedy  AlgorithmResultResponse `json:"nearest_neighbor"`
	Saving  SavingResponse          `json:"saving"`
	Seed    uint64                  `json:"seed"`
}
