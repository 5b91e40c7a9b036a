package services

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

// individual is one candidate route. Its genes are stop positions and are
// never modified once the individual joins a population.
type individual struct {
	genes []int
	cost  float64
}

type population []individual

// GenerationStat records the best-ever and the mean population cost after a generation.
type GenerationStat struct {
	Generation int     `json:"generation"`
	BestKm     float64 `json:"best_km"`
	MeanKm     float64 `json:"mean_km"`
}

// GeneticResult is the outcome of one genetic optimization run.
type GeneticResult struct {
	StopIDs            []int
	Trace              []TracePoint
	DistanceKm         float64
	InitialBestKm      float64
	GenerationsRun     int
	Elapsed            time.Duration
	ImprovementPercent float64
	Params             GeneticParams
	History            []GenerationStat
}

// OptimizeGenetic searches permutations of stops for the shortest closed tour
// from depot using a generational genetic algorithm.
//
// Each generation keeps the EliteCount best routes unchanged and fills the
// rest by tournament selection, order crossover (OX) and swap/inversion
// mutation. The run stops after Generations generations or after
// MaxStagnantGenerations generations without a new best. All randomness comes
// from rng, so a fixed seed reproduces the run.
func OptimizeGenetic(
	depot domain.Coordinates,
	stops []domain.Stop,
	params GeneticParams,
	rng *rand.Rand,
	provider ports.DistanceProvider,
) (*GeneticResult, error) {
	if rng == nil {
		return nil, errors.New("optimize genetic: rng must be non-nil")
	}
	if err := ValidateOptimizationInput(depot, stops, 0); err != nil {
		return nil, fmt.Errorf("optimize genetic: %w", err)
	}

	start := time.Now()
	params = params.Sanitize(len(stops))

	if len(stops) == 0 {
		return &GeneticResult{
			StopIDs: []int{},
			Trace:   []TracePoint{},
			Params:  params,
			History: []GenerationStat{},
			Elapsed: time.Since(start),
		}, nil
	}

	m := NewDistanceMatrix(provider, depot, stops)

	pop := make(population, params.PopulationSize)
	for i := range pop {
		genes := randomPermutation(len(stops), rng)
		pop[i] = individual{genes: genes, cost: m.RouteCost(genes)}
	}

	best := fittest(pop)
	initialBest := best.cost
	history := make([]GenerationStat, 0, params.Generations+1)
	history = append(history, GenerationStat{Generation: 0, BestKm: best.cost, MeanKm: meanCost(pop)})

	generationsRun := 0
	stagnant := 0
	for gen := 1; gen <= params.Generations; gen++ {
		pop = nextGeneration(pop, params, m, rng)
		generationsRun = gen

		if candidate := fittest(pop); candidate.cost < best.cost {
			best = candidate
			stagnant = 0
		} else {
			stagnant++
		}
		history = append(history, GenerationStat{Generation: gen, BestKm: best.cost, MeanKm: meanCost(pop)})

		if stagnant >= params.MaxStagnantGenerations {
			break
		}
	}

	ordered := stopsForOrder(stops, best.genes)

	return &GeneticResult{
		StopIDs:            idsForOrder(stops, best.genes),
		Trace:              BuildTrace(depot, ordered),
		DistanceKm:         best.cost,
		InitialBestKm:      initialBest,
		GenerationsRun:     generationsRun,
		Elapsed:            time.Since(start),
		ImprovementPercent: improvementPercent(initialBest, best.cost),
		Params:             params,
		History:            history,
	}, nil
}

// nextGeneration builds a brand-new population from prev. Elites are carried
// over as-is; every other member is a freshly allocated child.
func nextGeneration(prev population, params GeneticParams, m *DistanceMatrix, rng *rand.Rand) population {
	ranked := slices.Clone(prev)
	slices.SortStableFunc(ranked, func(a, b individual) int {
		switch {
		case a.cost < b.cost:
			return -1
		case a.cost > b.cost:
			return 1
		default:
			return 0
		}
	})

	next := make(population, 0, params.PopulationSize)
	next = append(next, ranked[:params.EliteCount]...)

	n := m.Stops()
	for len(next) < params.PopulationSize {
		p1 := tournamentSelect(prev, params.TournamentSize, rng)
		p2 := tournamentSelect(prev, params.TournamentSize, rng)

		var c1, c2 []int
		if rng.Float64() < params.CrossoverRate {
			lo, hi := cutPoints(n, rng)
			c1 = orderCrossover(p1.genes, p2.genes, lo, hi)
			c2 = orderCrossover(p2.genes, p1.genes, lo, hi)
		} else {
			c1 = slices.Clone(p1.genes)
			c2 = slices.Clone(p2.genes)
		}

		for _, child := range [][]int{c1, c2} {
			if len(next) == params.PopulationSize {
				break
			}
			mutate(child, params, rng)
			next = append(next, individual{genes: child, cost: m.RouteCost(child)})
		}
	}

	return next
}

// mutate applies the swap and inversion operators with independent coin-flips.
// child must be owned by the caller.
func mutate(child []int, params GeneticParams, rng *rand.Rand) {
	if rng.Float64() < params.MutationRate {
		swapMutation(child, rng)
	}
	if rng.Float64() < params.InversionRate {
		inversionMutation(child, rng)
	}
}

// fittest returns the lowest-cost individual; the first one wins ties.
func fittest(pop population) individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.cost < best.cost {
			best = ind
		}
	}
	return best
}

func meanCost(pop population) float64 {
	if len(pop) == 0 {
		return 0
	}
	total := 0.0
	for _, ind := range pop {
		total += ind.cost
	}
	return total / float64(len(pop))
}
