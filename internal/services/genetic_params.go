package services

import "math"

// Bounds applied to genetic parameters. Out-of-range values are clamped,
// never rejected.
const (
	MinPopulationFloor = 4
	MaxPopulationSize  = 500
	MinGenerations     = 10
	MaxGenerations     = 1000
)

// GeneticParams are the effective parameters of one genetic run.
type GeneticParams struct {
	PopulationSize         int     `json:"population_size" yaml:"population_size"`
	Generations            int     `json:"generations" yaml:"generations"`
	CrossoverRate          float64 `json:"crossover_rate" yaml:"crossover_rate"`
	MutationRate           float64 `json:"mutation_rate" yaml:"mutation_rate"`
	InversionRate          float64 `json:"inversion_rate" yaml:"inversion_rate"`
	EliteCount             int     `json:"elite_count" yaml:"elite_count"`
	TournamentSize         int     `json:"tournament_size" yaml:"tournament_size"`
	MaxStagnantGenerations int     `json:"max_stagnant_generations" yaml:"max_stagnant_generations"`
}

// GeneticOptions carries caller overrides; nil fields take defaults.
type GeneticOptions struct {
	PopulationSize         *int
	Generations            *int
	CrossoverRate          *float64
	MutationRate           *float64
	InversionRate          *float64
	EliteCount             *int
	TournamentSize         *int
	MaxStagnantGenerations *int
}

// GeneticDefaults describes how unset options are filled in. Elite count,
// inversion rate and the stagnation bound are derived from other parameters.
type GeneticDefaults struct {
	PopulationSize     int     `yaml:"population_size"`
	Generations        int     `yaml:"generations"`
	CrossoverRate      float64 `yaml:"crossover_rate"`
	MutationRate       float64 `yaml:"mutation_rate"`
	EliteFraction      float64 `yaml:"elite_fraction"`
	TournamentSize     int     `yaml:"tournament_size"`
	StagnationFloor    int     `yaml:"stagnation_floor"`
	StagnationFraction float64 `yaml:"stagnation_fraction"`
}

func DefaultGeneticDefaults() GeneticDefaults {
	return GeneticDefaults{
		PopulationSize:     100,
		Generations:        500,
		CrossoverRate:      0.8,
		MutationRate:       0.2,
		EliteFraction:      0.1,
		TournamentSize:     3,
		StagnationFloor:    50,
		StagnationFraction: 0.5,
	}
}

// Resolve fills unset options from d and clamps the result for stopCount stops.
func (d GeneticDefaults) Resolve(opts GeneticOptions, stopCount int) GeneticParams {
	d = d.withFallbacks()

	p := GeneticParams{
		PopulationSize: intOr(opts.PopulationSize, d.PopulationSize),
		Generations:    intOr(opts.Generations, d.Generations),
		CrossoverRate:  rateOr(opts.CrossoverRate, d.CrossoverRate),
		MutationRate:   rateOr(opts.MutationRate, d.MutationRate),
	}
	p.PopulationSize = clampInt(p.PopulationSize, populationFloor(stopCount), MaxPopulationSize)
	p.Generations = clampInt(p.Generations, MinGenerations, MaxGenerations)
	p.CrossoverRate = clampRate(p.CrossoverRate)
	p.MutationRate = clampRate(p.MutationRate)

	p.InversionRate = rateOr(opts.InversionRate, p.MutationRate/2)
	p.EliteCount = intOr(opts.EliteCount, int(d.EliteFraction*float64(p.PopulationSize)))
	p.TournamentSize = intOr(opts.TournamentSize, d.TournamentSize)
	p.MaxStagnantGenerations = intOr(
		opts.MaxStagnantGenerations,
		max(d.StagnationFloor, int(float64(p.Generations)*d.StagnationFraction)),
	)

	return p.Sanitize(stopCount)
}

// Sanitize clamps every parameter into its documented range for stopCount
// stops. It is idempotent.
func (p GeneticParams) Sanitize(stopCount int) GeneticParams {
	p.PopulationSize = clampInt(p.PopulationSize, populationFloor(stopCount), MaxPopulationSize)
	p.Generations = clampInt(p.Generations, MinGenerations, MaxGenerations)
	p.CrossoverRate = clampRate(p.CrossoverRate)
	p.MutationRate = clampRate(p.MutationRate)
	p.InversionRate = clampRate(p.InversionRate)
	p.EliteCount = clampInt(p.EliteCount, 1, p.PopulationSize)
	p.TournamentSize = clampInt(p.TournamentSize, 2, p.PopulationSize)
	p.MaxStagnantGenerations = clampInt(p.MaxStagnantGenerations, 1, p.Generations)
	return p
}

func (d GeneticDefaults) withFallbacks() GeneticDefaults {
	def := DefaultGeneticDefaults()
	if d.PopulationSize <= 0 {
		d.PopulationSize = def.PopulationSize
	}
	if d.Generations <= 0 {
		d.Generations = def.Generations
	}
	if d.EliteFraction <= 0 || d.EliteFraction > 1 {
		d.EliteFraction = def.EliteFraction
	}
	if d.TournamentSize <= 0 {
		d.TournamentSize = def.TournamentSize
	}
	if d.StagnationFloor <= 0 {
		d.StagnationFloor = def.StagnationFloor
	}
	if d.StagnationFraction <= 0 {
		d.StagnationFraction = def.StagnationFraction
	}
	return d
}

// populationFloor is max(4, stopCount), capped so the range is never empty.
func populationFloor(stopCount int) int {
	return min(max(MinPopulationFloor, stopCount), MaxPopulationSize)
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func rateOr(v *float64, fallback float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return fallback
	}
	return *v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampRate(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
