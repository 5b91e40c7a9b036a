package domain

import "fmt"

// Delivery vehicle aggregate tracking the weight committed to one route.
type Vehicle struct {
	VehicleID  int
	CapacityKg float64
	LoadKg     float64
	StopIDs    []int
}

func NewVehicle(id int, capacityKg float64) *Vehicle {
	return &Vehicle{
		VehicleID:  id,
		CapacityKg: capacityKg,
	}
}

// Fits reports whether weightKg can be added without exceeding capacity.
func (v *Vehicle) Fits(weightKg float64) bool {
	return v.LoadKg+weightKg <= v.CapacityKg
}

// Load a single stop onto the vehicle.
func (v *Vehicle) Load(stop Stop) error {
	if !v.Fits(stop.WeightKg) {
		return fmt.Errorf(
			"load vehicle: vehicle %d cannot take stop %d (load=%.3fkg weight=%.3fkg capacity=%.3fkg)",
			v.VehicleID, stop.ID, v.LoadKg, stop.WeightKg, v.CapacityKg,
		)
	}
	v.LoadKg += stop.WeightKg
	v.StopIDs = append(v.StopIDs, stop.ID)
	return nil
}
