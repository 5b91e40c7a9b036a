package services

import (
	"slices"

	"fleet-dispatch-service/internal/domain"
)

// SplitOrder turns a resolution into one order fragment per group. Fragments
// keep every header field of order (customer, invoice, location...) and get
// OrderID 0 so the caller can assign new identifiers.
func SplitOrder(order domain.Order, res ConflictResolution) ([]domain.Order, error) {
	if !res.NeedsSplit || len(res.Groups) < 2 {
		return nil, domain.Invalid("items", "order has no conflicting families to split")
	}

	fragments := make([]domain.Order, 0, len(res.Groups))
	for _, g := range res.Groups {
		if len(g.Items) == 0 {
			continue
		}
		fragment := order
		fragment.OrderID = 0
		fragment.Items = slices.Clone(g.Items)
		fragments = append(fragments, fragment)
	}

	return fragments, nil
}
