package services

import (
	"fmt"
	"math"
	"slices"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

// Upper bound on MaxIterations; callers needing a wall-clock limit lower it.
const MaxTabuIterations = 5000

// TabuOptions configures one tabu search run.
type TabuOptions struct {
	TabuListSize          int `json:"tabu_list_size" yaml:"tabu_list_size"`
	MaxIterations         int `json:"max_iterations" yaml:"max_iterations"`
	MaxStagnantIterations int `json:"max_stagnant_iterations" yaml:"max_stagnant_iterations"`
}

func DefaultTabuOptions() TabuOptions {
	return TabuOptions{
		TabuListSize:          10,
		MaxIterations:         100,
		MaxStagnantIterations: 20,
	}
}

// Normalize replaces non-positive values with defaults and caps the iteration budget.
func (o TabuOptions) Normalize() TabuOptions {
	def := DefaultTabuOptions()
	if o.TabuListSize <= 0 {
		o.TabuListSize = def.TabuListSize
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = def.MaxIterations
	}
	if o.MaxStagnantIterations <= 0 {
		o.MaxStagnantIterations = def.MaxStagnantIterations
	}
	o.MaxIterations = min(o.MaxIterations, MaxTabuIterations)
	return o
}

// IterationStat is the best distance known after an iteration.
type IterationStat struct {
	Iteration int     `json:"iteration"`
	BestKm    float64 `json:"best_km"`
}

// TabuResult is the outcome of refining a route.
type TabuResult struct {
	StopIDs            []int
	InitialDistanceKm  float64
	FinalDistanceKm    float64
	ImprovementPercent float64
	Iterations         int
	History            []IterationStat
	Options            TabuOptions
}

type moveKind int

const (
	moveTwoOpt moveKind = iota
	moveSwap
)

// RefineTabu improves an initial visiting order with tabu search.
//
// Every iteration scores all 2-opt moves (reverse a segment of length >= 2)
// and then all swap moves. A move is admissible when it is not tabu, or when
// it beats the best distance seen so far (aspiration). The best admissible
// neighbour always becomes the current route, even if it is worse, and its
// move is pushed onto the tabu list. The search stops after MaxIterations,
// after MaxStagnantIterations without a new best, or when no neighbour is
// admissible. The returned route is never longer than the initial one.
func RefineTabu(
	depot domain.Coordinates,
	initial []int,
	lookup map[int]domain.Stop,
	opts TabuOptions,
	provider ports.DistanceProvider,
) (*TabuResult, error) {
	opts = opts.Normalize()

	stops, err := resolveTabuStops(depot, initial, lookup)
	if err != nil {
		return nil, fmt.Errorf("refine tabu: %w", err)
	}

	m := NewDistanceMatrix(provider, depot, stops)
	n := len(stops)

	current := identityOrder(n)
	best := slices.Clone(current)
	bestCost := m.RouteCost(current)
	initialCost := bestCost

	tabu := NewTabuList(opts.TabuListSize)
	history := []IterationStat{{Iteration: 0, BestKm: initialCost}}
	scratch := make([]int, n)

	iterations := 0
	stagnant := 0
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		found := false
		var chosen Move
		var chosenKind moveKind
		chosenCost := math.Inf(1)

		consider := func(kind moveKind, mv Move) {
			cost := m.RouteCost(scratch)
			if !admissible(tabu, mv, cost, bestCost) {
				return
			}
			if cost < chosenCost {
				found = true
				chosen = mv
				chosenKind = kind
				chosenCost = cost
			}
		}

		// 2-opt neighbourhood.
		for i := 0; i < n-1; i++ {
			for j := i + 2; j <= n; j++ {
				copy(scratch, current)
				slices.Reverse(scratch[i:j])
				consider(moveTwoOpt, Move{I: i, J: j})
			}
		}

		// Swap neighbourhood.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				copy(scratch, current)
				scratch[i], scratch[j] = scratch[j], scratch[i]
				consider(moveSwap, Move{I: i, J: j})
			}
		}

		if !found {
			break
		}

		current = applyMove(current, chosenKind, chosen)
		tabu.Push(chosen)
		iterations = iter

		if chosenCost < bestCost {
			best = slices.Clone(current)
			bestCost = chosenCost
			stagnant = 0
		} else {
			stagnant++
		}
		history = append(history, IterationStat{Iteration: iter, BestKm: bestCost})

		if stagnant >= opts.MaxStagnantIterations {
			break
		}
	}

	return &TabuResult{
		StopIDs:            idsForOrder(stops, best),
		InitialDistanceKm:  initialCost,
		FinalDistanceKm:    bestCost,
		ImprovementPercent: improvementPercent(initialCost, bestCost),
		Iterations:         iterations,
		History:            history,
		Options:            opts,
	}, nil
}

// admissible reports whether mv may be taken: it is not tabu, or it beats
// the best distance seen so far (aspiration).
func admissible(tabu *TabuList, mv Move, cost, best float64) bool {
	return !tabu.Contains(mv) || cost < best
}

// applyMove returns a new order with mv applied to route.
func applyMove(route []int, kind moveKind, mv Move) []int {
	next := slices.Clone(route)
	switch kind {
	case moveTwoOpt:
		slices.Reverse(next[mv.I:mv.J])
	case moveSwap:
		next[mv.I], next[mv.J] = next[mv.J], next[mv.I]
	}
	return next
}

// resolveTabuStops maps the seed route onto stop records, rejecting unknown
// or repeated ids and invalid coordinates.
func resolveTabuStops(depot domain.Coordinates, initial []int, lookup map[int]domain.Stop) ([]domain.Stop, error) {
	if err := depot.Validate("depot"); err != nil {
		return nil, err
	}

	stops := make([]domain.Stop, 0, len(initial))
	seen := make(map[int]struct{}, len(initial))
	for i, id := range initial {
		field := fmt.Sprintf("initial_route[%d]", i)
		s, ok := lookup[id]
		if !ok {
			return nil, domain.Invalid(field, fmt.Sprintf("unknown stop id %d", id))
		}
		if _, dup := seen[id]; dup {
			return nil, domain.Invalid(field, fmt.Sprintf("duplicate stop id %d", id))
		}
		seen[id] = struct{}{}

		if err := s.Validate(i); err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}

	return stops, nil
}

// StopLookup indexes stops by id.
func StopLookup(stops []domain.Stop) map[int]domain.Stop {
	lookup := make(map[int]domain.Stop, len(stops))
	for _, s := range stops {
		lookup[s.ID] = s
	}
	return lookup
}
