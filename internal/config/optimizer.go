package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"fleet-dispatch-service/internal/services"

	"gopkg.in/yaml.v3"
)

// OptimizerDefaults holds the defaults applied when a request leaves
// optimizer parameters unset.
type OptimizerDefaults struct {
	Genetic services.GeneticDefaults `yaml:"genetic"`
	Tabu    services.TabuOptions     `yaml:"tabu"`
}

func DefaultOptimizerDefaults() OptimizerDefaults {
	return OptimizerDefaults{
		Genetic: services.DefaultGeneticDefaults(),
		Tabu:    services.DefaultTabuOptions(),
	}
}

// LoadOptimizerDefaults reads a YAML file over the built-in defaults. Keys
// missing from the file keep their built-in value; unknown keys are an error.
// An empty path returns the built-in defaults.
func LoadOptimizerDefaults(path string) (OptimizerDefaults, error) {
	out := DefaultOptimizerDefaults()
	if path == "" {
		return out, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return OptimizerDefaults{}, fmt.Errorf("load optimizer defaults: open %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return OptimizerDefaults{}, fmt.Errorf("load optimizer defaults: parse %q: %w", path, err)
	}

	out.Tabu = out.Tabu.Normalize()
	return out, nil
}
