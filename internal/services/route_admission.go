package services

import (
	"cmp"
	"fmt"
	"slices"

	"fleet-dispatch-service/internal/domain"
)

// AdmissionResult tells whether an order fragment may join a route.
type AdmissionResult struct {
	Accepted bool
	Conflict *domain.RestrictionEdge
	Reason   string
}

// CheckRouteAdmission decides whether a fragment carrying fragmentFamilies can
// be added to a route that already carries routeFamilies.
//
// The union of both sets is checked against the restrictions; only pairs that
// involve at least one of the fragment's families count, so conflicts already
// committed to the route do not block unrelated fragments. When several pairs
// are violated, the one with the smallest (min id, max id) is reported.
func CheckRouteAdmission(
	routeFamilies []domain.FamilyID,
	fragmentFamilies []domain.FamilyID,
	restrictions []domain.RestrictionEdge,
) AdmissionResult {
	fragment := familySet(fragmentFamilies)
	if len(fragment) == 0 {
		return AdmissionResult{Accepted: true}
	}
	union := familySet(routeFamilies)
	for f := range fragment {
		union[f] = struct{}{}
	}

	for _, r := range sortedRestrictions(restrictions) {
		if r.A == r.B {
			continue
		}
		_, aIn := union[r.A]
		_, bIn := union[r.B]
		if !aIn || !bIn {
			continue
		}
		_, aNew := fragment[r.A]
		_, bNew := fragment[r.B]
		if !aNew && !bNew {
			continue
		}

		conflict := r
		return AdmissionResult{
			Accepted: false,
			Conflict: &conflict,
			Reason: fmt.Sprintf(
				"%q cannot be combined with %q on the same route",
				domain.FamilyLabel(r.A, r.AName), domain.FamilyLabel(r.B, r.BName),
			),
		}
	}

	return AdmissionResult{Accepted: true}
}

// AdmitFragments checks fragments one after another, adding each accepted
// fragment's families to the route before checking the next. It returns the
// first rejection and its index, or an accepted result and -1.
func AdmitFragments(
	routeFamilies []domain.FamilyID,
	fragments [][]domain.FamilyID,
	restrictions []domain.RestrictionEdge,
) (AdmissionResult, int) {
	committed := slices.Clone(routeFamilies)
	for i, fragment := range fragments {
		res := CheckRouteAdmission(committed, fragment, restrictions)
		if !res.Accepted {
			return res, i
		}
		committed = append(committed, fragment...)
	}
	return AdmissionResult{Accepted: true}, -1
}

func sortedRestrictions(restrictions []domain.RestrictionEdge) []domain.RestrictionEdge {
	out := slices.Clone(restrictions)
	slices.SortStableFunc(out, func(x, y domain.RestrictionEdge) int {
		xl, xh := min(x.A, x.B), max(x.A, x.B)
		yl, yh := min(y.A, y.B), max(y.A, y.B)
		if c := cmp.Compare(xl, yl); c != 0 {
			return c
		}
		return cmp.Compare(xh, yh)
	})
	return out
}

func familySet(ids []domain.FamilyID) map[domain.FamilyID]struct{} {
	set := make(map[domain.FamilyID]struct{}, len(ids))
	for _, id := range ids {
		if id != 0 {
			set[id] = struct{}{}
		}
	}
	return set
}
