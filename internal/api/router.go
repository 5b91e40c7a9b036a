package api

import (
	"context"
	"net/http"
	"time"

	"fleet-dispatch-service/internal/api/handlers"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/metrics"
	"fleet-dispatch-service/internal/ports"
	"fleet-dispatch-service/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the adapters and settings the API needs. Repositories and the
// cache are optional: routes that need a missing repository answer 503.
type Deps struct {
	Provider     ports.DistanceProvider
	Orders       ports.OrderRepository
	Restrictions ports.RestrictionRepository
	Routes       ports.RouteRepository
	Cache        ports.ResultCache
	CacheTTL     time.Duration

	Genetic      services.GeneticDefaults
	Tabu         services.TabuOptions
	DefaultDepot *domain.Coordinates

	RateLimitRPS   float64
	RateLimitBurst int

	HealthChecks map[string]func(ctx context.Context) error
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	metrics.RegisterDefault()

	mux := http.NewServeMux()

	resolver := handlers.StopResolver{Orders: d.Orders, DefaultDepot: d.DefaultDepot}
	healthHandler := &handlers.HealthHandler{Checks: d.HealthChecks}
	optimizeHandler := &handlers.OptimizeHandler{
		StopResolver:    resolver,
		Provider:        d.Provider,
		Cache:           d.Cache,
		CacheTTL:        d.CacheTTL,
		GeneticDefaults: d.Genetic,
		Tabu:            d.Tabu,
	}
	routeHandler := &handlers.RouteHandler{
		StopResolver: resolver,
		Provider:     d.Provider,
		Restrictions: d.Restrictions,
		Routes:       d.Routes,
		Tabu:         d.Tabu,
	}
	orderHandler := &handlers.OrderHandler{Orders: d.Orders, Restrictions: d.Restrictions}

	routes := map[string]http.HandlerFunc{
		"/health":                  healthHandler.Health,
		"/optimize/genetic":        optimizeHandler.Genetic,
		"/optimize/tabu":           optimizeHandler.TabuSearch,
		"/optimize/compare":        optimizeHandler.Compare,
		"/routes/nearest-neighbor": routeHandler.NearestNeighbor,
		"/routes/fleet":            routeHandler.Fleet,
		"/routes/admission":        routeHandler.Admission,
		"/routes":                  routeHandler.Save,
		"/orders/conflicts":        orderHandler.Conflicts,
		"/orders/split":            orderHandler.Split,
	}

	known := make(map[string]bool, len(routes)+1)
	for path, h := range routes {
		mux.HandleFunc(path, h)
		known[path] = true
	}
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	known["/metrics"] = true

	var h http.Handler = mux
	h = rateLimitMiddleware(d.RateLimitRPS, d.RateLimitBurst, h)
	h = recoverMiddleware(h)
	h = loggingMiddleware(known, h)
	h = requestIDMiddleware(h)
	return h
}
