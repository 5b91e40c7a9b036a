package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OptimizerRuns counts optimizer invocations by algorithm and outcome (ok, invalid, error).
	OptimizerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimizer_runs_total", Help: "Optimizer runs by algorithm and outcome."},
		[]string{"algorithm", "outcome"},
	)
	OptimizerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "optimizer_duration_seconds", Help: "Optimizer wall time in seconds.", Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30}},
		[]string{"algorithm"},
	)
	// OptimizerImprovement tracks the percent improvement reported by each run.
	OptimizerImprovement = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "optimizer_improvement_percent", Help: "Route improvement over the starting route, in percent.", Buckets: []float64{0, 1, 2, 5, 10, 20, 30, 50, 75}},
		[]string{"algorithm"},
	)

	// ResultCacheLookups counts result cache lookups by outcome (hit, miss, error).
	ResultCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "result_cache_lookups_total", Help: "Result cache lookups by outcome."},
		[]string{"outcome"},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "http_rate_limited_total", Help: "Requests rejected by the rate limiter."},
	)
)

// RegisterDefault registers every collector on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizerRuns)
		Registry.MustRegister(OptimizerDuration)
		Registry.MustRegister(OptimizerImprovement)
		Registry.MustRegister(ResultCacheLookups)
		Registry.MustRegister(RateLimited)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
