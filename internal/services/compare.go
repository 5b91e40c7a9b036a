package services

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// AlgorithmSummary is one contender in a comparison.
type AlgorithmSummary struct {
	Algorithm   string
	StopIDs     []int
	DistanceKm  float64
	Elapsed     time.Duration
	Generations int
}

type ComparisonResult struct {
	Genetic       AlgorithmSummary
	Greedy        AlgorithmSummary
	SavingKm      float64
	SavingPercent float64
}

// CompareAlgorithms runs the genetic optimizer and an uncapacitated greedy
// nearest-neighbor tour over the same stops, concurrently, and reports how
// much shorter the genetic route is. The genetic run draws from its own
// generator seeded with seed.
func CompareAlgorithms(
	ctx context.Context,
	depot domain.Coordinates,
	stops []domain.Stop,
	params GeneticParams,
	seed uint64,
	provider ports.DistanceProvider,
) (*ComparisonResult, error) {
	if err := ValidateOptimizationInput(depot, stops, MinOptimizationStops); err != nil {
		return nil, fmt.Errorf("compare algorithms: %w", err)
	}

	var res ComparisonResult
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ga, err := OptimizeGenetic(depot, stops, params, NewRand(seed), provider)
		if err != nil {
			return err
		}
		res.Genetic = AlgorithmSummary{
			Algorithm:   AlgorithmGenetic,
			StopIDs:     ga.StopIDs,
			DistanceKm:  ga.DistanceKm,
			Elapsed:     ga.Elapsed,
			Generations: ga.GenerationsRun,
		}
		return nil
	})

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		m := NewDistanceMatrix(provider, depot, stops)
		unbounded := domain.NewVehicle(1, math.Inf(1))
		order, distance, _, err := nearestNeighborTour(m, stops, identityOrder(len(stops)), unbounded)
		if err != nil {
			return err
		}
		res.Greedy = AlgorithmSummary{
			Algorithm:  AlgorithmNearestNeighbor,
			StopIDs:    idsForOrder(stops, order),
			DistanceKm: distance,
			Elapsed:    time.Since(start),
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare algorithms: %w", err)
	}

	res.SavingKm = res.Greedy.DistanceKm - res.Genetic.DistanceKm
	res.SavingPercent = improvementPercent(res.Greedy.DistanceKm, res.Genetic.DistanceKm)

	return &res, nil
}

// NewRand returns a PCG-backed generator for seed. Each optimization run owns
// its generator; nothing is shared between requests.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
