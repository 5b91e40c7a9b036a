package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Validate reports the first field that is non-finite or out of range.
// field is used as the prefix of the reported field name (e.g. "depot").
func (c Coordinates) Validate(field string) error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) {
		return Invalid(field+".latitude", "must be a finite number")
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return Invalid(field+".longitude", "must be a finite number")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return Invalid(field+".latitude", fmt.Sprintf("%g is outside [-90, 90]", c.Lat))
	}
	if c.Lon < -180 || c.Lon > 180 {
		return Invalid(field+".longitude", fmt.Sprintf("%g is outside [-180, 180]", c.Lon))
	}
	return nil
}
