package ports

import (
	"context"

	"fleet-dispatch-service/internal/domain"
)

// Port: a boundary for reading active family restrictions.
type RestrictionRepository interface {
	// Return active restrictions touching any of the given families.
	ListActiveRestrictions(ctx context.Context, families []domain.FamilyID) ([]domain.RestrictionEdge, error)
}
