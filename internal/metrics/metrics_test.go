package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefault_Idempotent(t *testing.T) {
	require.NotPanics(t, RegisterDefault)
	require.NotPanics(t, RegisterDefault)

	OptimizerRuns.WithLabelValues("genetic", "ok").Inc()

	families, err := Registry.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if c := m.GetCounter(); c != nil {
				counts[f.GetName()] += c.GetValue()
			}
		}
		counts[f.GetName()] += 0
	}
	assert.GreaterOrEqual(t, counts["optimizer_runs_total"], 1.0)
	assert.Contains(t, counts, "go_goroutines")
}
