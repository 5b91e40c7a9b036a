package ports

import (
	"context"

	"fleet-dispatch-service/internal/domain"
)

// Port: a boundary for retrieving orders from a data source.
type OrderRepository interface {
	// Retrieve the orders with the given ids, items included.
	// Missing ids are reported with ErrNotFound.
	GetOrders(ctx context.Context, ids []int) ([]domain.Order, error)
}
