package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"fleet-dispatch-service/internal/api/dto"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stopsJSON plus one stop heavier than any test vehicle.
const heavyStopsJSON = `[
	{"id": 1, "latitude": -27.5800, "longitude": -48.5400, "weight": 10},
	{"id": 2, "latitude": -27.6100, "longitude": -48.5300, "weight": 20},
	{"id": 3, "latitude": -27.6200, "longitude": -48.5700, "weight": 30},
	{"id": 4, "latitude": -27.5750, "longitude": -48.5750, "weight": 40},
	{"id": 5, "latitude": -27.6000, "longitude": -48.5600, "weight": 80}
]`

func newRouteHandler() *RouteHandler {
	return &RouteHandler{Provider: haversine, Tabu: services.DefaultTabuOptions()}
}

func routedIDs(routes []dto.NearestNeighborRouteResponse) []int {
	var ids []int
	for _, r := range routes {
		ids = append(ids, r.StopIDs...)
	}
	return ids
}

func TestNearestNeighbor_Single(t *testing.T) {
	h := newRouteHandler()
	body := fmt.Sprintf(`{"depot": %s, "stops": %s, "capacity_kg": 50}`, depotJSON, stopsJSON)

	rec := doRequest(t, h.NearestNeighbor, http.MethodPost, "/routes/nearest-neighbor", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[dto.NearestNeighborResponse](t, rec)

	assert.Equal(t, "single", res.Mode)
	require.Len(t, res.Routes, 1)
	assert.Equal(t, 1, res.Routes[0].VehicleID)
	assert.LessOrEqual(t, res.Routes[0].WeightKg, 50.0)
	assert.NotEmpty(t, res.UnservedStopIDs)
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, append(routedIDs(res.Routes), res.UnservedStopIDs...))
	assert.Empty(t, res.ExceedsCapacity)
}

func TestNearestNeighbor_SingleWithNoStops(t *testing.T) {
	h := newRouteHandler()

	rec := doRequest(t, h.NearestNeighbor, http.MethodPost, "/routes/nearest-neighbor",
		fmt.Sprintf(`{"depot": %s, "capacity_kg": 50}`, depotJSON))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[dto.NearestNeighborResponse](t, rec)
	assert.Empty(t, res.Routes)
	assert.NotNil(t, res.Routes)
}

func TestNearestNeighbor_Multiple(t *testing.T) {
	h := newRouteHandler()
	body := fmt.Sprintf(`{"depot": %s, "stops": %s, "capacity_kg": 60, "mode": "multiple"}`, depotJSON, heavyStopsJSON)

	rec := doRequest(t, h.NearestNeighbor, http.MethodPost, "/routes/nearest-neighbor", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[dto.NearestNeighborResponse](t, rec)

	assert.Equal(t, "multiple", res.Mode)
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, routedIDs(res.Routes))
	for i, r := range res.Routes {
		assert.Equal(t, i+1, r.VehicleID)
		assert.LessOrEqual(t, r.WeightKg, 60.0)
	}
	assert.Equal(t, []dto.UnassignedStopResponse{
		{StopID: 5, WeightKg: 80, Status: services.ExceedsCapacityStatus},
	}, res.ExceedsCapacity)
}

func TestNearestNeighbor_RejectsUnknownMode(t *testing.T) {
	h := newRouteHandler()

	rec := doRequest(t, h.NearestNeighbor, http.MethodPost, "/routes/nearest-neighbor",
		fmt.Sprintf(`{"depot": %s, "stops": %s, "capacity_kg": 60, "mode": "all"}`, depotJSON, stopsJSON))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "mode")
}

func TestFleet(t *testing.T) {
	h := newRouteHandler()
	body := fmt.Sprintf(`{"depot": %s, "stops": %s, "capacity_kg": 60, "workers": 2}`, depotJSON, heavyStopsJSON)

	rec := doRequest(t, h.Fleet, http.MethodPost, "/routes/fleet", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[dto.FleetResponse](t, rec)

	var served []int
	total := 0.0
	for i, r := range res.Routes {
		assert.Equal(t, i+1, r.VehicleID)
		assert.ElementsMatch(t, r.InitialRoute.StopIDs, r.OptimizedRoute.StopIDs)
		assert.LessOrEqual(t, r.OptimizedRoute.DistanceKm, r.InitialRoute.DistanceKm)
		served = append(served, r.OptimizedRoute.StopIDs...)
		total += r.OptimizedRoute.DistanceKm
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, served)
	assert.InDelta(t, total, res.TotalDistanceKm, 0.05)
	require.Len(t, res.ExceedsCapacity, 1)
	assert.Equal(t, 5, res.ExceedsCapacity[0].StopID)
}

func TestFleet_RejectsTooManyWorkers(t *testing.T) {
	h := newRouteHandler()

	rec := doRequest(t, h.Fleet, http.MethodPost, "/routes/fleet",
		fmt.Sprintf(`{"depot": %s, "stops": %s, "capacity_kg": 60, "workers": 64}`, depotJSON, stopsJSON))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "workers")
}

func TestAdmission(t *testing.T) {
	h := newRouteHandler()

	t.Run("accepted", func(t *testing.T) {
		rec := doRequest(t, h.Admission, http.MethodPost, "/routes/admission", `{
			"route_families": [2],
			"fragments": [[4]],
			"restrictions": [{"family_a": 1, "family_b": 2}]
		}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decodeBody[dto.AdmissionResponse](t, rec)
		assert.True(t, res.Accepted)
		assert.Nil(t, res.Conflict)
		assert.Nil(t, res.RejectedFragment)
	})

	t.Run("second fragment rejected", func(t *testing.T) {
		rec := doRequest(t, h.Admission, http.MethodPost, "/routes/admission", `{
			"route_families": [2],
			"fragments": [[4], [1]],
			"restrictions": [{"family_a": 1, "family_b": 2, "family_a_name": "Cleaning", "family_b_name": "Food"}]
		}`)

		require.Equal(t, http.StatusOK, rec.Code)
		res := decodeBody[dto.AdmissionResponse](t, rec)
		assert.False(t, res.Accepted)
		require.NotNil(t, res.RejectedFragment)
		assert.Equal(t, 1, *res.RejectedFragment)
		require.NotNil(t, res.Conflict)
		assert.Equal(t, 1, res.Conflict.FamilyA)
		assert.Equal(t, 2, res.Conflict.FamilyB)
		assert.Contains(t, res.Reason, "Cleaning")
	})

	t.Run("restrictions from storage", func(t *testing.T) {
		repo := &fakeRestrictions{edges: []domain.RestrictionEdge{{A: 2, B: 3}}}
		h := newRouteHandler()
		h.Restrictions = repo

		rec := doRequest(t, h.Admission, http.MethodPost, "/routes/admission",
			`{"route_families": [2], "fragments": [[3]]}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decodeBody[dto.AdmissionResponse](t, rec).Accepted)
		assert.ElementsMatch(t, []domain.FamilyID{2, 3}, repo.asked)
	})

	t.Run("storage not configured", func(t *testing.T) {
		rec := doRequest(t, h.Admission, http.MethodPost, "/routes/admission",
			`{"route_families": [2], "fragments": [[3]]}`)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("fragments required", func(t *testing.T) {
		rec := doRequest(t, h.Admission, http.MethodPost, "/routes/admission", `{"route_families": [2]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "fragments")
	})
}

func TestSaveRoute(t *testing.T) {
	const body = `{
		"route_date": "2026-03-02",
		"capacity_kg": 500,
		"order_ids": [103, 101],
		"distance_km": 12.5,
		"algorithm": "tabu_search"
	}`

	t.Run("storage not configured", func(t *testing.T) {
		h := newRouteHandler()

		rec := doRequest(t, h.Save, http.MethodPost, "/routes", body)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		routes := &fakeRoutes{}
		h := newRouteHandler()
		h.Orders = demoOrders()
		h.Routes = routes

		rec := doRequest(t, h.Save, http.MethodPost, "/routes", body)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		res := decodeBody[dto.SaveRouteResponse](t, rec)
		assert.Equal(t, 1, res.RouteID)
		assert.Contains(t, res.Message, "2 orders")

		require.Len(t, routes.saved, 1)
		plan := routes.saved[0]
		assert.Equal(t, []int{103, 101}, plan.OrderIDs)
		assert.Equal(t, 1, plan.VehicleID)
		assert.Equal(t, "planned", plan.Status)
		assert.Equal(t, "tabu_search", plan.Algorithm)
		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), plan.RouteDate)
		// 103: 20 x 1 kg; 101: 2 x 5 + 3 x 5 + 10 x 0.5.
		assert.InDelta(t, 50.0, plan.WeightKg, 1e-9)
	})

	t.Run("algorithm defaults to manual", func(t *testing.T) {
		routes := &fakeRoutes{}
		h := newRouteHandler()
		h.Orders = demoOrders()
		h.Routes = routes

		rec := doRequest(t, h.Save, http.MethodPost, "/routes",
			`{"route_date": "2026-03-02", "capacity_kg": 500, "order_ids": [102], "vehicle_id": 3}`)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "manual", routes.saved[0].Algorithm)
		assert.Equal(t, 3, routes.saved[0].VehicleID)
	})

	t.Run("unknown order", func(t *testing.T) {
		h := newRouteHandler()
		h.Orders = demoOrders()
		h.Routes = &fakeRoutes{}

		rec := doRequest(t, h.Save, http.MethodPost, "/routes",
			`{"route_date": "2026-03-02", "capacity_kg": 500, "order_ids": [999]}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad date", func(t *testing.T) {
		h := newRouteHandler()
		h.Orders = demoOrders()
		h.Routes = &fakeRoutes{}

		rec := doRequest(t, h.Save, http.MethodPost, "/routes",
			`{"route_date": "02/03/2026", "capacity_kg": 500, "order_ids": [101]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "route_date")
	})

	t.Run("repository failure", func(t *testing.T) {
		h := newRouteHandler()
		h.Orders = demoOrders()
		h.Routes = &fakeRoutes{err: errors.New("connection reset")}

		rec := doRequest(t, h.Save, http.MethodPost, "/routes", body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
