package handlers

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"fleet-dispatch-service/internal/api/dto"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
	"fleet-dispatch-service/internal/services"
)

// OptimizeHandler exposes the route optimizers.
type OptimizeHandler struct {
	StopResolver
	Provider ports.DistanceProvider
	// Optional. Seeded genetic runs and tabu pipelines are cached when set.
	Cache           ports.ResultCache
	CacheTTL        time.Duration
	GeneticDefaults services.GeneticDefaults
	Tabu            services.TabuOptions
}

// Inputs that fully determine a deterministic run, hashed into the cache key.
type geneticCacheKey struct {
	Depot   domain.Coordinates     `json:"depot"`
	Stops   []domain.Stop          `json:"stops"`
	Params  services.GeneticParams `json:"params"`
	Seed    uint64                 `json:"seed"`
	GeoJSON bool                   `json:"geojson"`
}

type tabuCacheKey struct {
	Depot      domain.Coordinates   `json:"depot"`
	Stops      []domain.Stop        `json:"stops"`
	CapacityKg float64              `json:"capacity_kg"`
	Options    services.TabuOptions `json:"options"`
}

// Genetic runs the genetic optimizer over the request's stops.
// With ?format=geojson the response also carries the route as GeoJSON.
func (h *OptimizeHandler) Genetic(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	withGeoJSON, ok := geoJSONFormat(w, r)
	if !ok {
		return
	}

	var req dto.GeneticRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	depot, stops, err := h.resolve(ctx, req.StopSource)
	if err == nil {
		err = services.ValidateOptimizationInput(depot, stops, services.MinOptimizationStops)
	}
	if err != nil {
		writeServiceError(w, r, "optimize genetic", err)
		return
	}

	params := h.GeneticDefaults.Resolve(geneticOptions(req.Params), len(stops))

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}

	cache := resultCache{cache: h.Cache, ttl: h.CacheTTL}
	var key string
	var cacheable bool
	if req.Seed != nil {
		key, cacheable = cache.key("ga", geneticCacheKey{depot, stops, params, seed, withGeoJSON})
	}
	if cacheable {
		if payload, hit := cache.get(ctx, key); hit {
			writeRaw(w, r, http.StatusOK, payload, "HIT")
			return
		}
	}

	start := time.Now()
	res, err := services.OptimizeGenetic(depot, stops, params, services.NewRand(seed), h.Provider)
	if err != nil {
		observeRun(services.AlgorithmGenetic, start, 0, err)
		writeServiceError(w, r, "optimize genetic", err)
		return
	}
	observeRun(services.AlgorithmGenetic, start, res.ImprovementPercent, nil)

	out := geneticResponse(res, seed)
	if withGeoJSON {
		out.GeoJSON = services.RouteGeoJSON(res.Trace, out.TotalDistanceKm)
	}

	h.respond(w, r, cache, key, cacheable, out)
}

// TabuSearch builds a nearest-neighbor route and refines it with tabu search.
func (h *OptimizeHandler) TabuSearch(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.TabuRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	depot, stops, err := h.resolve(ctx, req.StopSource)
	if err == nil {
		err = services.ValidateOptimizationInput(depot, stops, services.MinOptimizationStops)
	}
	if err != nil {
		writeServiceError(w, r, "optimize tabu", err)
		return
	}

	opts := tabuOptions(req.Tabu, h.Tabu)

	// The pipeline has no randomness, so every run is cacheable.
	cache := resultCache{cache: h.Cache, ttl: h.CacheTTL}
	key, cacheable := cache.key("tabu", tabuCacheKey{depot, stops, req.CapacityKg, opts})
	if cacheable {
		if payload, hit := cache.get(ctx, key); hit {
			writeRaw(w, r, http.StatusOK, payload, "HIT")
			return
		}
	}

	start := time.Now()
	res, err := services.RunPipeline(services.PipelineRequest{
		Depot:      depot,
		CapacityKg: req.CapacityKg,
		Stops:      stops,
		Tabu:       opts,
	}, h.Provider)
	if err != nil {
		observeRun(services.AlgorithmTabuSearch, start, 0, err)
		writeServiceError(w, r, "optimize tabu", err)
		return
	}
	observeRun(services.AlgorithmTabuSearch, start, res.ImprovementPercent, nil)

	out := dto.TabuResponse{
		InitialRoute:       summaryResponse(res.InitialRoute),
		OptimizedRoute:     summaryResponse(res.OptimizedRoute),
		DistanceReducedKm:  round2(res.DistanceReducedKm),
		ImprovementPercent: round2(res.ImprovementPercent),
		Iterations:         res.Iterations,
		UnservedStopIDs:    nonNil(res.UnservedStopIDs),
		History:            res.History,
		UsedParameters:     res.Tabu,
	}

	h.respond(w, r, cache, key, cacheable, out)
}

// Compare runs the genetic optimizer against a greedy nearest-neighbor tour.
func (h *OptimizeHandler) Compare(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.CompareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	depot, stops, err := h.resolve(ctx, req.StopSource)
	if err != nil {
		writeServiceError(w, r, "compare algorithms", err)
		return
	}

	params := h.GeneticDefaults.Resolve(geneticOptions(req.Params), len(stops))
	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}

	start := time.Now()
	res, err := services.CompareAlgorithms(ctx, depot, stops, params, seed, h.Provider)
	if err != nil {
		observeRun("comparison", start, 0, err)
		writeServiceError(w, r, "compare algorithms", err)
		return
	}
	observeRun("comparison", start, res.SavingPercent, nil)

	writeJSON(w, r, http.StatusOK, dto.CompareResponse{
		Genetic: dto.AlgorithmResultResponse{
			Algorithm:      res.Genetic.Algorithm,
			StopIDs:        res.Genetic.StopIDs,
			DistanceKm:     round2(res.Genetic.DistanceKm),
			ElapsedSeconds: res.Genetic.Elapsed.Seconds(),
			Generations:    res.Genetic.Generations,
		},
		Greedy: dto.AlgorithmResultResponse{
			Algorithm:      res.Greedy.Algorithm,
			StopIDs:        res.Greedy.StopIDs,
			DistanceKm:     round2(res.Greedy.DistanceKm),
			ElapsedSeconds: res.Greedy.Elapsed.Seconds(),
		},
		Saving: dto.SavingResponse{
			Km:      round2(res.SavingKm),
			Percent: round2(res.SavingPercent),
		},
		Seed: seed,
	})
}

// respond encodes out, stores it in the cache when cacheable, and writes it.
func (h *OptimizeHandler) respond(w http.ResponseWriter, r *http.Request, cache resultCache, key string, cacheable bool, out any) {
	if !cacheable {
		writeJSON(w, r, http.StatusOK, out)
		return
	}

	payload, err := json.Marshal(out)
	if err != nil {
		writeServiceError(w, r, "encode result", fmt.Errorf("encode result: %w", err))
		return
	}
	payload = append(payload, '\n')
	cache.set(r.Context(), key, payload)
	writeRaw(w, r, http.StatusOK, payload, "MISS")
}

func geneticResponse(res *services.GeneticResult, seed uint64) dto.GeneticResponse {
	return dto.GeneticResponse{
		OrderedStopIDs:     nonNil(res.StopIDs),
		CoordinateTrace:    nonNil(res.Trace),
		TotalDistanceKm:    round2(res.DistanceKm),
		GenerationsRun:     res.GenerationsRun,
		ElapsedSeconds:     res.Elapsed.Seconds(),
		ImprovementPercent: round2(res.ImprovementPercent),
		UsedParameters:     res.Params,
		FitnessHistory:     nonNil(res.History),
		Seed:               seed,
	}
}

// geoJSONFormat reads ?format=. Only json (default) and geojson are known.
func geoJSONFormat(w http.ResponseWriter, r *http.Request) (bool, bool) {
	switch f := r.URL.Query().Get("format"); f {
	case "", "json":
		return false, true
	case "geojson":
		return true, true
	default:
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("format: unsupported value %q", f))
		return false, false
	}
}
