package services

import (
	"fmt"
	"math"

	"fleet-dispatch-service/internal/domain"
)

// MinOptimizationStops is the smallest stop set accepted by an optimization request.
const MinOptimizationStops = 2

// ValidateOptimizationInput rejects a request before any search starts.
func ValidateOptimizationInput(depot domain.Coordinates, stops []domain.Stop, minStops int) error {
	if err := depot.Validate("depot"); err != nil {
		return err
	}
	if len(stops) < minStops {
		return domain.Invalid("stops", fmt.Sprintf("at least %d stops are required, got %d", minStops, len(stops)))
	}
	return domain.ValidateStops(stops)
}

func validateCapacity(capacityKg float64) error {
	if math.IsNaN(capacityKg) || math.IsInf(capacityKg, 0) {
		return domain.Invalid("capacity", "must be a finite number")
	}
	if capacityKg <= 0 {
		return domain.Invalid("capacity", "must be greater than zero")
	}
	return nil
}
