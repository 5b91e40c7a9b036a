package dto

type NearestNeighborRequest struct {
	StopSource
	CapacityKg float64 `json:"capacity_kg" validate:"gt=0"`
	// "single" (default) builds one route; "multiple" keeps building routes
	// until every stop that fits a vehicle is served.
	Mode string `json:"mode" validate:"omitempty,oneof=single multiple"`
}

type NearestNeighborRouteResponse struct {
	VehicleID  int     `json:"vehicle_id"`
	StopIDs    []int   `json:"stop_ids"`
	DistanceKm float64 `json:"distance_km"`
	WeightKg   float64 `json:"weight_kg"`
}

type UnassignedStopResponse struct {
	StopID   int     `json:"stop_id"`
	WeightKg float64 `json:"weight_kg"`
	Status   string  `json:"status"`
}

type NearestNeighborResponse struct {
	Mode            string                         `json:"mode"`
	Routes          []NearestNeighborRouteResponse `json:"routes"`
	UnservedStopIDs []int                          `json:"unserved_stop_ids"`
	ExceedsCapacity []UnassignedStopResponse       `json:"exceeds_capacity"`
}

type FleetRequest struct {
	StopSource
	CapacityKg float64            `json:"capacity_kg" validate:"gt=0"`
	Tabu       TabuOptionsRequest `json:"tabu"`
	Workers    int                `json:"workers" validate:"omitempty,min=1,max=32"`
}

type FleetRouteResponse struct {
	VehicleID          int                  `json:"vehicle_id"`
	InitialRoute       RouteSummaryResponse `json:"initial_route"`
	OptimizedRoute     RouteSummaryResponse `json:"optimized_route"`
	ImprovementPercent float64              `json:"improvement_percent"`
	Iterations         int                  `json:"iterations"`
}

type FleetResponse struct {
	Routes          []FleetRouteResponse     `json:"routes"`
	ExceedsCapacity []UnassignedStopResponse `json:"exceeds_capacity"`
	TotalDistanceKm float64                  `json:"total_distance_km"`
}

type AdmissionRequest struct {
	RouteFamilies []int                `json:"route_families" validate:"omitempty,dive,gt=0"`
	Fragments     [][]int              `json:"fragments" validate:"required,min=1,dive,dive,gt=0"`
	Restrictions  []RestrictionRequest `json:"restrictions" validate:"omitempty,dive"`
}

type AdmissionResponse struct {
	Accepted         bool                 `json:"accepted"`
	Conflict         *RestrictionResponse `json:"conflict,omitempty"`
	Reason           string               `json:"reason,omitempty"`
	RejectedFragment *int                 `json:"rejected_fragment,omitempty"`
}

type SaveRouteRequest struct {
	RouteDate  string  `json:"route_date" validate:"required,datetime=2006-01-02"`
	VehicleID  int     `json:"vehicle_id" validate:"omitempty,min=1"`
	CapacityKg float64 `json:"capacity_kg" validate:"gt=0"`
	OrderIDs   []int   `json:"order_ids" validate:"required,min=1,unique,dive,gt=0"`
	DistanceKm float64 `json:"distance_km" validate:"gte=0"`
	Algorithm  string  `json:"algorithm" validate:"omitempty,oneof=nearest_neighbor tabu_search genetic manual"`
}

type SaveRouteResponse struct {
	RouteID int    `json:"route_id"`
	Message string `json:"message"`
}
