package services

import (
	"testing"

	"fleet-dispatch-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admissionRules = []domain.RestrictionEdge{
	{A: food, B: pesticide, AName: "Food", BName: "Pesticide"},
	{A: cleaning, B: food, AName: "Cleaning", BName: "Food"},
}

func TestCheckRouteAdmission(t *testing.T) {
	cases := []struct {
		name     string
		route    []domain.FamilyID
		fragment []domain.FamilyID
		accepted bool
		conflict [2]domain.FamilyID
	}{
		{"empty route", nil, []domain.FamilyID{food}, true, [2]domain.FamilyID{}},
		{"compatible", []domain.FamilyID{toys}, []domain.FamilyID{food}, true, [2]domain.FamilyID{}},
		{"conflicts with route", []domain.FamilyID{pesticide}, []domain.FamilyID{food}, false, [2]domain.FamilyID{food, pesticide}},
		{"conflicts inside fragment", nil, []domain.FamilyID{cleaning, food}, false, [2]domain.FamilyID{cleaning, food}},
		{"lowest pair reported first", []domain.FamilyID{cleaning, pesticide}, []domain.FamilyID{food}, false, [2]domain.FamilyID{cleaning, food}},
		{"existing conflict does not block unrelated fragment", []domain.FamilyID{food, pesticide}, []domain.FamilyID{toys}, true, [2]domain.FamilyID{}},
		{"empty fragment", []domain.FamilyID{food}, nil, true, [2]domain.FamilyID{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := CheckRouteAdmission(tc.route, tc.fragment, admissionRules)
			assert.Equal(t, tc.accepted, res.Accepted)
			if tc.accepted {
				assert.Nil(t, res.Conflict)
				assert.Empty(t, res.Reason)
				return
			}
			require.NotNil(t, res.Conflict)
			assert.True(t, res.Conflict.Touches(tc.conflict[0], tc.conflict[1]))
			assert.NotEmpty(t, res.Reason)
		})
	}
}

func TestCheckRouteAdmission_ReasonNamesFamilies(t *testing.T) {
	res := CheckRouteAdmission([]domain.FamilyID{pesticide}, []domain.FamilyID{food}, admissionRules)
	assert.Equal(t, `"Food" cannot be combined with "Pesticide" on the same route`, res.Reason)

	res = CheckRouteAdmission([]domain.FamilyID{7}, []domain.FamilyID{8}, []domain.RestrictionEdge{{A: 7, B: 8}})
	assert.Equal(t, `"family 7" cannot be combined with "family 8" on the same route`, res.Reason)
}

func TestAdmitFragments(t *testing.T) {
	fragments := [][]domain.FamilyID{{toys}, {cleaning}, {food}}

	res, idx := AdmitFragments(nil, fragments, admissionRules)
	assert.False(t, res.Accepted)
	assert.Equal(t, 2, idx, "food clashes with the cleaning fragment accepted just before")

	res, idx = AdmitFragments(nil, fragments[:2], admissionRules)
	assert.True(t, res.Accepted)
	assert.Equal(t, -1, idx)
}
