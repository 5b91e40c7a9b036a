package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatesValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Coordinates
		field   string
		wantErr bool
	}{
		{name: "origin", c: Coordinates{}, wantErr: false},
		{name: "poles and antimeridian", c: Coordinates{Lat: -90, Lon: 180}, wantErr: false},
		{name: "lat too high", c: Coordinates{Lat: 90.0001}, field: "depot.latitude", wantErr: true},
		{name: "lon too low", c: Coordinates{Lon: -180.5}, field: "depot.longitude", wantErr: true},
		{name: "nan lat", c: Coordinates{Lat: math.NaN()}, field: "depot.latitude", wantErr: true},
		{name: "inf lon", c: Coordinates{Lon: math.Inf(1)}, field: "depot.longitude", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Validate("depot")
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidInput))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestValidateStops(t *testing.T) {
	ok := []Stop{
		{ID: 1, Location: Coordinates{Lat: -27.59, Lon: -48.54}, WeightKg: 10},
		{ID: 2, Location: Coordinates{Lat: -27.60, Lon: -48.55}, WeightKg: 0},
	}
	require.NoError(t, ValidateStops(ok))

	dup := append([]Stop{}, ok...)
	dup = append(dup, Stop{ID: 1})
	err := ValidateStops(dup)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "stops[2].id")

	neg := []Stop{{ID: 5, WeightKg: -1}}
	err = ValidateStops(neg)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "stops[0].weight")
}

func TestIsPermutation(t *testing.T) {
	assert.True(t, IsPermutation([]int{1, 2, 3}, []int{3, 1, 2}))
	assert.True(t, IsPermutation(nil, []int{}))
	assert.False(t, IsPermutation([]int{1, 2, 3}, []int{1, 2, 2}))
	assert.False(t, IsPermutation([]int{1, 2}, []int{1, 2, 3}))
}

func TestRestrictionEdge(t *testing.T) {
	e := RestrictionEdge{A: 3, B: 9, AName: "Chemicals"}
	assert.True(t, e.Touches(9, 3))
	assert.False(t, e.Touches(3, 3))
	assert.Equal(t, "Chemicals x family 9", e.Label())
}

func TestOrderStop(t *testing.T) {
	o := Order{
		OrderID:  42,
		Location: Coordinates{Lat: 1, Lon: 2},
		Items: []LineItem{
			{ProductID: 1, Quantity: 3, WeightKg: 1.5},
			{ProductID: 2, Quantity: 2, WeightKg: 10},
		},
	}
	s := o.Stop()
	assert.Equal(t, 42, s.ID)
	assert.InDelta(t, 24.5, s.WeightKg, 1e-9)
}
