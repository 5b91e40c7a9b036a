package handlers

import (
	"fmt"
	"net/http"
	"time"

	"fleet-dispatch-service/internal/api/dto"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
	"fleet-dispatch-service/internal/services"
)

// RouteHandler builds, checks and stores vehicle routes.
type RouteHandler struct {
	StopResolver
	Provider     ports.DistanceProvider
	Restrictions ports.RestrictionRepository
	Routes       ports.RouteRepository
	Tabu         services.TabuOptions
}

// NearestNeighbor builds one route ("single") or as many as needed ("multiple").
func (h *RouteHandler) NearestNeighbor(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.NearestNeighborRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	depot, stops, err := h.resolve(r.Context(), req.StopSource)
	if err != nil {
		writeServiceError(w, r, "nearest neighbor", err)
		return
	}

	start := time.Now()
	out := dto.NearestNeighborResponse{
		Mode:            "single",
		Routes:          []dto.NearestNeighborRouteResponse{},
		UnservedStopIDs: []int{},
		ExceedsCapacity: []dto.UnassignedStopResponse{},
	}

	if req.Mode == "multiple" {
		plan, err := services.BuildRoutes(depot, req.CapacityKg, stops, h.Provider)
		observeRun(services.AlgorithmNearestNeighbor, start, 0, err)
		if err != nil {
			writeServiceError(w, r, "nearest neighbor", err)
			return
		}

		out.Mode = "multiple"
		for _, rt := range plan.Routes {
			out.Routes = append(out.Routes, nnRouteResponse(rt))
		}
		out.ExceedsCapacity = unassigned(stops, plan.ExceedsCapacity)
		writeJSON(w, r, http.StatusOK, out)
		return
	}

	route, err := services.BuildRoute(depot, req.CapacityKg, stops, h.Provider)
	observeRun(services.AlgorithmNearestNeighbor, start, 0, err)
	if err != nil {
		writeServiceError(w, r, "nearest neighbor", err)
		return
	}

	if len(route.StopIDs) > 0 {
		out.Routes = append(out.Routes, nnRouteResponse(*route))
	}
	out.UnservedStopIDs = nonNil(route.UnassignedStopIDs)
	writeJSON(w, r, http.StatusOK, out)
}

// Fleet splits the stops over as many vehicles as needed and refines each route.
func (h *RouteHandler) Fleet(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.FleetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	depot, stops, err := h.resolve(r.Context(), req.StopSource)
	if err != nil {
		writeServiceError(w, r, "plan fleet", err)
		return
	}

	start := time.Now()
	plan, err := services.PlanFleet(r.Context(), services.PlanFleetRequest{
		Depot:      depot,
		CapacityKg: req.CapacityKg,
		Stops:      stops,
		Tabu:       tabuOptions(req.Tabu, h.Tabu),
		Workers:    req.Workers,
	}, h.Provider)
	observeRun("fleet", start, 0, err)
	if err != nil {
		writeServiceError(w, r, "plan fleet", err)
		return
	}

	out := dto.FleetResponse{
		Routes:          make([]dto.FleetRouteResponse, 0, len(plan.Routes)),
		ExceedsCapacity: unassigned(stops, plan.ExceedsCapacity),
		TotalDistanceKm: round2(plan.TotalDistanceKm),
	}
	for _, rt := range plan.Routes {
		out.Routes = append(out.Routes, dto.FleetRouteResponse{
			VehicleID:          rt.VehicleID,
			InitialRoute:       summaryResponse(rt.InitialRoute),
			OptimizedRoute:     summaryResponse(rt.OptimizedRoute),
			ImprovementPercent: round2(rt.ImprovementPercent),
			Iterations:         rt.Iterations,
		})
	}

	writeJSON(w, r, http.StatusOK, out)
}

// Admission checks whether order fragments can join a route, in order.
func (h *RouteHandler) Admission(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.AdmissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	route := familyIDs(req.RouteFamilies)
	fragments := make([][]domain.FamilyID, 0, len(req.Fragments))
	all := append([]domain.FamilyID(nil), route...)
	for _, f := range req.Fragments {
		ids := familyIDs(f)
		fragments = append(fragments, ids)
		all = append(all, ids...)
	}

	restrictions, err := loadRestrictions(r.Context(), h.Restrictions, req.Restrictions, all)
	if err != nil {
		writeServiceError(w, r, "route admission", err)
		return
	}

	res, idx := services.AdmitFragments(route, fragments, restrictions)

	out := dto.AdmissionResponse{Accepted: res.Accepted, Reason: res.Reason}
	if !res.Accepted {
		out.RejectedFragment = &idx
	}
	if res.Conflict != nil {
		out.Conflict = &dto.RestrictionResponse{
			FamilyA: int(res.Conflict.A),
			FamilyB: int(res.Conflict.B),
			NameA:   res.Conflict.AName,
			NameB:   res.Conflict.BName,
			Reason:  res.Conflict.Reason,
		}
	}

	writeJSON(w, r, http.StatusOK, out)
}

// Save persists a route as an ordered list of orders.
func (h *RouteHandler) Save(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.SaveRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if h.Routes == nil || h.Orders == nil {
		writeServiceError(w, r, "save route", errStorageUnavailable)
		return
	}

	// The validator already checked the layout.
	date, _ := time.Parse(time.DateOnly, req.RouteDate)

	ctx := r.Context()
	orders, err := h.Orders.GetOrders(ctx, req.OrderIDs)
	if err != nil {
		writeServiceError(w, r, "save route", err)
		return
	}
	weight := 0.0
	for _, o := range orders {
		weight += o.TotalWeightKg()
	}

	plan := domain.RoutePlan{
		VehicleID:  max(req.VehicleID, 1),
		RouteDate:  date,
		CapacityKg: req.CapacityKg,
		OrderIDs:   req.OrderIDs,
		DistanceKm: req.DistanceKm,
		WeightKg:   weight,
		Algorithm:  req.Algorithm,
		Status:     "planned",
	}
	if plan.Algorithm == "" {
		plan.Algorithm = "manual"
	}

	id, err := h.Routes.SaveRoute(ctx, plan)
	if err != nil {
		writeServiceError(w, r, "save route", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.SaveRouteResponse{
		RouteID: id,
		Message: fmt.Sprintf("route #%d created with %d orders", id, len(req.OrderIDs)),
	})
}

func nnRouteResponse(rt services.NearestNeighborRoute) dto.NearestNeighborRouteResponse {
	return dto.NearestNeighborRouteResponse{
		VehicleID:  rt.VehicleID,
		StopIDs:    nonNil(rt.StopIDs),
		DistanceKm: round2(rt.DistanceKm),
		WeightKg:   round2(rt.WeightKg),
	}
}

func unassigned(stops []domain.Stop, ids []int) []dto.UnassignedStopResponse {
	lookup := services.StopLookup(stops)
	out := make([]dto.UnassignedStopResponse, 0, len(ids))
	for _, id := range ids {
		out = append(out, dto.UnassignedStopResponse{
			StopID:   id,
			WeightKg: lookup[id].WeightKg,
			Status:   services.ExceedsCapacityStatus,
		})
	}
	return out
}

func familyIDs(ids []int) []domain.FamilyID {
	out := make([]domain.FamilyID, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.FamilyID(id))
	}
	return out
}
