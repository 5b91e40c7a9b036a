package domain

import (
	"fmt"
	"math"
)

// Represents a single delivery point: an order's destination and its demand.
// A Stop is read-only once handed to a search.
type Stop struct {
	ID       int
	Location Coordinates
	WeightKg float64
}

// Validate checks the stop's coordinates and weight.
// idx is the stop's position in the request, used for error reporting.
func (s Stop) Validate(idx int) error {
	field := fmt.Sprintf("stops[%d]", idx)
	if err := s.Location.Validate(field); err != nil {
		return err
	}
	if math.IsNaN(s.WeightKg) || math.IsInf(s.WeightKg, 0) {
		return Invalid(field+".weight", "must be a finite number")
	}
	if s.WeightKg < 0 {
		return Invalid(field+".weight", "must not be negative")
	}
	return nil
}

// ValidateStops validates every stop and rejects duplicate identifiers.
func ValidateStops(stops []Stop) error {
	seen := make(map[int]struct{}, len(stops))
	for i, s := range stops {
		if err := s.Validate(i); err != nil {
			return err
		}
		if _, ok := seen[s.ID]; ok {
			return Invalid(fmt.Sprintf("stops[%d].id", i), fmt.Sprintf("duplicate stop id %d", s.ID))
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// StopIDs returns the identifiers of stops in input order.
func StopIDs(stops []Stop) []int {
	ids := make([]int, len(stops))
	for i, s := range stops {
		ids[i] = s.ID
	}
	return ids
}
