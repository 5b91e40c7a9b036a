package domain

import "time"

// Route is a visiting order over stop identifiers. Every operator that
// produces a Route must keep it a permutation of its input: each id exactly
// once, no omissions.
type Route []int

// IsPermutation reports whether a and b hold the same identifiers with the
// same multiplicity.
func IsPermutation(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	counts := make(map[int]int, len(a))
	for _, id := range a {
		counts[id]++
	}
	for _, id := range b {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}

// Represents the planned route of a single vehicle as persisted by the
// route repository. Stop order is the delivery order.
type RoutePlan struct {
	RouteID    int
	VehicleID  int
	RouteDate  time.Time
	CapacityKg float64
	OrderIDs   []int
	DistanceKm float64
	WeightKg   float64
	Algorithm  string
	Status     string
}
