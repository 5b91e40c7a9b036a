package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"fleet-dispatch-service/internal/adapters/cache"
	"fleet-dispatch-service/internal/api/dto"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallParams = `{"population_size": 20, "generations": 15}`

func newOptimizeHandler(t *testing.T) *OptimizeHandler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &OptimizeHandler{
		Provider:        haversine,
		Cache:           cache.NewRedisResultCache(client),
		CacheTTL:        time.Minute,
		GeneticDefaults: services.DefaultGeneticDefaults(),
		Tabu:            services.DefaultTabuOptions(),
	}
}

func geneticBody(extra string) string {
	return fmt.Sprintf(`{"depot": %s, "stops": %s, "params": %s%s}`, depotJSON, stopsJSON, smallParams, extra)
}

func TestGenetic(t *testing.T) {
	h := newOptimizeHandler(t)

	rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic", geneticBody(`, "seed": 7`))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[dto.GeneticResponse](t, rec)

	assert.ElementsMatch(t, []int{1, 2, 3, 4}, res.OrderedStopIDs)
	assert.Len(t, res.CoordinateTrace, 6)
	assert.Equal(t, services.TraceDepot, res.CoordinateTrace[0].Kind)
	assert.Greater(t, res.TotalDistanceKm, 0.0)
	assert.Equal(t, uint64(7), res.Seed)
	assert.Equal(t, 20, res.UsedParameters.PopulationSize)
	assert.Equal(t, 15, res.UsedParameters.Generations)
	assert.NotEmpty(t, res.FitnessHistory)
	assert.Nil(t, res.GeoJSON)
}

func TestGenetic_SeededRunsAreCached(t *testing.T) {
	h := newOptimizeHandler(t)
	body := geneticBody(`, "seed": 42`)

	first := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic", body)
	second := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic", body)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestGenetic_UnseededRunsBypassCache(t *testing.T) {
	h := newOptimizeHandler(t)

	rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic", geneticBody(""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.NotZero(t, decodeBody[dto.GeneticResponse](t, rec).Seed)
}

func TestGenetic_GeoJSON(t *testing.T) {
	h := newOptimizeHandler(t)

	rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic?format=geojson", geneticBody(`, "seed": 1`))

	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[map[string]any](t, rec)
	fc, ok := res["geojson"].(map[string]any)
	require.True(t, ok, "geojson missing")
	assert.Equal(t, "FeatureCollection", fc["type"])
	// One LineString plus one Point per trace vertex.
	assert.Len(t, fc["features"], 7)
}

func TestGenetic_UnknownFormat(t *testing.T) {
	h := newOptimizeHandler(t)

	rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic?format=xml", geneticBody(""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "format")
}

func TestGenetic_LenientParams(t *testing.T) {
	h := newOptimizeHandler(t)
	body := fmt.Sprintf(`{
		"depot": %s,
		"stops": %s,
		"seed": 3,
		"params": {"population_size": "lots", "generations": "12", "mutation_rate": null}
	}`, depotJSON, stopsJSON)

	rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	used := decodeBody[dto.GeneticResponse](t, rec).UsedParameters
	def := services.DefaultGeneticDefaults()
	assert.Equal(t, def.PopulationSize, used.PopulationSize)
	assert.Equal(t, 12, used.Generations)
	assert.Equal(t, def.MutationRate, used.MutationRate)
}

func TestGenetic_NonObjectParamsUseDefaults(t *testing.T) {
	h := newOptimizeHandler(t)
	body := fmt.Sprintf(`{"depot": %s, "stops": %s, "seed": 3, "params": "abc"}`, depotJSON, stopsJSON)

	rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	used := decodeBody[dto.GeneticResponse](t, rec).UsedParameters
	def := services.DefaultGeneticDefaults()
	assert.Equal(t, def.PopulationSize, used.PopulationSize)
	assert.Equal(t, def.Generations, used.Generations)
}

func TestGenetic_UsesConfiguredDefaults(t *testing.T) {
	h := newOptimizeHandler(t)
	h.GeneticDefaults.PopulationSize = 30
	h.GeneticDefaults.Generations = 40
	body := fmt.Sprintf(`{"depot": %s, "stops": %s, "seed": 3}`, depotJSON, stopsJSON)

	rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	used := decodeBody[dto.GeneticResponse](t, rec).UsedParameters
	assert.Equal(t, 30, used.PopulationSize)
	assert.Equal(t, 40, used.Generations)
}

func TestGenetic_BadRequests(t *testing.T) {
	oneStop := `[{"id": 1, "latitude": -27.58, "longitude": -48.54}]`

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"single stop", fmt.Sprintf(`{"depot": %s, "stops": %s}`, depotJSON, oneStop), "stops"},
		{"no stops", fmt.Sprintf(`{"depot": %s}`, depotJSON), "stops"},
		{"unknown field", fmt.Sprintf(`{"depot": %s, "stops": %s, "speed": 3}`, depotJSON, stopsJSON), "unknown field"},
		{"missing depot", fmt.Sprintf(`{"stops": %s}`, stopsJSON), "depot"},
		{"depot out of range", fmt.Sprintf(`{"depot": {"latitude": 91, "longitude": 0}, "stops": %s}`, stopsJSON), "depot"},
		{"stop without latitude", fmt.Sprintf(`{"depot": %s, "stops": [{"id": 1, "longitude": 1}]}`, depotJSON), "stops[0].latitude"},
		{"stops and order ids", fmt.Sprintf(`{"depot": %s, "stops": %s, "order_ids": [101]}`, depotJSON, stopsJSON), "not both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newOptimizeHandler(t)

			rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorMessage(t, rec), tt.msg)
		})
	}
}

func TestGenetic_DefaultDepot(t *testing.T) {
	h := newOptimizeHandler(t)
	h.DefaultDepot = &domain.Coordinates{Lat: -27.5969, Lon: -48.5495}

	rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic",
		fmt.Sprintf(`{"stops": %s, "params": %s}`, stopsJSON, smallParams))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[dto.GeneticResponse](t, rec)
	assert.Equal(t, -27.5969, res.CoordinateTrace[0].Lat)
}

func TestGenetic_OrderIDs(t *testing.T) {
	t.Run("storage not configured", func(t *testing.T) {
		h := newOptimizeHandler(t)

		rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic",
			fmt.Sprintf(`{"depot": %s, "order_ids": [101, 102]}`, depotJSON))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		h := newOptimizeHandler(t)
		h.Orders = demoOrders()

		rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic",
			fmt.Sprintf(`{"depot": %s, "order_ids": [101, 999]}`, depotJSON))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("resolved from storage", func(t *testing.T) {
		h := newOptimizeHandler(t)
		h.Orders = demoOrders()

		rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic",
			fmt.Sprintf(`{"depot": %s, "order_ids": [101, 102, 103], "params": %s, "seed": 5}`, depotJSON, smallParams))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.ElementsMatch(t, []int{101, 102, 103}, decodeBody[dto.GeneticResponse](t, rec).OrderedStopIDs)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		h := newOptimizeHandler(t)
		h.Orders = demoOrders()

		rec := doRequest(t, h.Genetic, http.MethodPost, "/optimize/genetic",
			fmt.Sprintf(`{"depot": %s, "order_ids": [101, 101]}`, depotJSON))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "order_ids")
	})
}

func TestTabuSearch(t *testing.T) {
	h := newOptimizeHandler(t)
	body := fmt.Sprintf(`{"depot": %s, "stops": %s, "capacity_kg": 500, "tabu": {"max_iterations": 30}}`, depotJSON, stopsJSON)

	first := doRequest(t, h.TabuSearch, http.MethodPost, "/optimize/tabu", body)
	second := doRequest(t, h.TabuSearch, http.MethodPost, "/optimize/tabu", body)

	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	res := decodeBody[dto.TabuResponse](t, first)

	assert.ElementsMatch(t, []int{1, 2, 3, 4}, res.OptimizedRoute.StopIDs)
	assert.ElementsMatch(t, res.InitialRoute.StopIDs, res.OptimizedRoute.StopIDs)
	assert.LessOrEqual(t, res.OptimizedRoute.DistanceKm, res.InitialRoute.DistanceKm)
	assert.GreaterOrEqual(t, res.DistanceReducedKm, 0.0)
	assert.Equal(t, 30, res.UsedParameters.MaxIterations)
	assert.Equal(t, services.DefaultTabuOptions().TabuListSize, res.UsedParameters.TabuListSize)
	assert.Empty(t, res.UnservedStopIDs)

	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
}

func TestTabuSearch_CapacityLeavesStopsUnserved(t *testing.T) {
	h := newOptimizeHandler(t)
	body := fmt.Sprintf(`{"depot": %s, "stops": %s, "capacity_kg": 45}`, depotJSON, stopsJSON)

	rec := doRequest(t, h.TabuSearch, http.MethodPost, "/optimize/tabu", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[dto.TabuResponse](t, rec)

	assert.LessOrEqual(t, res.OptimizedRoute.WeightKg, 45.0)
	served := append(append([]int{}, res.OptimizedRoute.StopIDs...), res.UnservedStopIDs...)
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, served)
}

func TestTabuSearch_NonObjectOptionsUseDefaults(t *testing.T) {
	h := newOptimizeHandler(t)
	body := fmt.Sprintf(`{"depot": %s, "stops": %s, "capacity_kg": 500, "tabu": 5}`, depotJSON, stopsJSON)

	rec := doRequest(t, h.TabuSearch, http.MethodPost, "/optimize/tabu", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, services.DefaultTabuOptions(), decodeBody[dto.TabuResponse](t, rec).UsedParameters)
}

func TestTabuSearch_RequiresCapacity(t *testing.T) {
	h := newOptimizeHandler(t)

	rec := doRequest(t, h.TabuSearch, http.MethodPost, "/optimize/tabu",
		fmt.Sprintf(`{"depot": %s, "stops": %s}`, depotJSON, stopsJSON))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "capacity_kg")
}

func TestCompare(t *testing.T) {
	h := newOptimizeHandler(t)
	body := fmt.Sprintf(`{"depot": %s, "stops": %s, "params": %s, "seed": 11}`, depotJSON, stopsJSON, smallParams)

	rec := doRequest(t, h.Compare, http.MethodPost, "/optimize/compare", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[dto.CompareResponse](t, rec)

	assert.Equal(t, services.AlgorithmGenetic, res.Genetic.Algorithm)
	assert.Equal(t, services.AlgorithmNearestNeighbor, res.Greedy.Algorithm)
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, res.Genetic.StopIDs)
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, res.Greedy.StopIDs)
	assert.Equal(t, uint64(11), res.Seed)
	assert.InDelta(t, res.Greedy.DistanceKm-res.Genetic.DistanceKm, res.Saving.Km, 0.02)
}

func TestCompare_RejectsSingleStop(t *testing.T) {
	h := newOptimizeHandler(t)

	rec := doRequest(t, h.Compare, http.MethodPost, "/optimize/compare",
		fmt.Sprintf(`{"depot": %s, "stops": [{"id": 1, "latitude": -27.58, "longitude": -48.54}]}`, depotJSON))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
