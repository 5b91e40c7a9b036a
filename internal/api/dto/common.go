package dto

type CoordinatesRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

type StopRequest struct {
	ID        int      `json:"id"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	WeightKg  float64  `json:"weight" validate:"gte=0"`
}

// StopSource is embedded by requests that route over a stop set. Stops are
// given inline or as order ids resolved through the order repository.
type StopSource struct {
	Depot    *CoordinatesRequest `json:"depot"`
	Stops    []StopRequest       `json:"stops" validate:"omitempty,dive"`
	OrderIDs []int               `json:"order_ids" validate:"omitempty,unique,dive,gt=0"`
}

type RestrictionRequest struct {
	FamilyA int    `json:"family_a" validate:"gt=0"`
	FamilyB int    `json:"family_b" validate:"gt=0"`
	NameA   string `json:"family_a_name"`
	NameB   string `json:"family_b_name"`
	Reason  string `json:"reason"`
}

type RestrictionResponse struct {
	FamilyA int    `json:"family_a"`
	FamilyB int    `json:"family_b"`
	NameA   string `json:"family_a_name,omitempty"`
	NameB   string `json:"family_b_name,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type TabuOptionsRequest struct {
	TabuListSize          LenientNumber `json:"tabu_list_size"`
	MaxIterations         LenientNumber `json:"max_iterations"`
	MaxStagnantIterations LenientNumber `json:"max_stagnant_iterations"`
}

type RouteSummaryResponse struct {
	StopIDs    []int   `json:"stop_ids"`
	DistanceKm float64 `json:"distance_km"`
	WeightKg   float64 `json:"weight_kg"`
	Algorithm  string  `json:"algorithm"`
}
