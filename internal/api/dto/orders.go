package dto

type LineItemRequest struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	WeightKg    float64 `json:"weight_kg" validate:"gte=0"`
	FamilyID    int     `json:"family_id" validate:"gte=0"`
	FamilyName  string  `json:"family_name"`
}

type LineItemResponse struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	WeightKg    float64 `json:"weight_kg"`
	FamilyID    int     `json:"family_id,omitempty"`
	FamilyName  string  `json:"family_name,omitempty"`
}

// ConflictsRequest names an order to load, or carries its items inline.
// Restrictions default to the active ones in storage.
type ConflictsRequest struct {
	OrderID      int                  `json:"order_id" validate:"gte=0"`
	Items        []LineItemRequest    `json:"items" validate:"omitempty,dive"`
	Restrictions []RestrictionRequest `json:"restrictions" validate:"omitempty,dive"`
}

type GroupResponse struct {
	Title         string             `json:"title"`
	FamilyIDs     []int              `json:"family_ids"`
	FamilyNames   []string           `json:"family_names"`
	TotalQuantity int                `json:"total_quantity"`
	Items         []LineItemResponse `json:"items"`
}

type ConflictsResponse struct {
	NeedsSplit      bool            `json:"needs_split"`
	GroupCount      int             `json:"group_count"`
	Groups          []GroupResponse `json:"groups"`
	Conflicts       []string        `json:"conflicts"`
	ConflictSummary string          `json:"conflict_summary,omitempty"`
}

type SplitRequest = ConflictsRequest

type FragmentResponse struct {
	Title    string             `json:"title"`
	Customer string             `json:"customer,omitempty"`
	Invoice  int                `json:"invoice,omitempty"`
	WeightKg float64            `json:"weight_kg"`
	Items    []LineItemResponse `json:"items"`
}

type SplitResponse struct {
	OrderID         int                `json:"order_id,omitempty"`
	Fragments       []FragmentResponse `json:"fragments"`
	ConflictSummary string             `json:"conflict_summary"`
}
