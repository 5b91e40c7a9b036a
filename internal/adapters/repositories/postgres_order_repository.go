package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/platform/obs"
	"fleet-dispatch-service/internal/ports"
)

// Postgres-backed implementation of the OrderRepository port.
type PostgresOrderRepository struct{ DB *sql.DB }

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{DB: db}
}

// Return the requested orders, items included, in the order of ids.
// Any id without a row fails the whole call with ports.ErrNotFound.
func (r *PostgresOrderRepository) GetOrders(ctx context.Context, ids []int) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "orders.GetOrders")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres order repository: DB is nil")
	}
	if len(ids) == 0 {
		return []domain.Order{}, nil
	}

	keys := uniqueInt64(ids)

	headerQuery := `
	SELECT
		order_id,
		customer,
		city,
		COALESCE(invoice, 0),
		note,
		ordered_at,
		latitude,
		longitude
	FROM orders
	WHERE order_id = ANY($1::int[]);
	`
	rows, err := r.DB.QueryContext(ctx, headerQuery, keys)
	if err != nil {
		return nil, fmt.Errorf("get orders: query orders table: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]*domain.Order, len(keys))
	for rows.Next() {
		var o domain.Order
		var orderedAt time.Time
		if err := rows.Scan(
			&o.OrderID, &o.Customer, &o.City, &o.Invoice, &o.Note,
			&orderedAt, &o.Location.Lat, &o.Location.Lon,
		); err != nil {
			return nil, fmt.Errorf("get orders: scan order row: %w", err)
		}
		o.OrderedAt = orderedAt.UTC()
		o.Items = []domain.LineItem{}
		byID[o.OrderID] = &o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get orders: order row iteration: %w", err)
	}

	var missing []int
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("get orders: order ids %v: %w", missing, ports.ErrNotFound)
	}

	if err := r.loadItems(ctx, keys, byID); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, *byID[id])
	}

	return orders, nil
}

func (r *PostgresOrderRepository) loadItems(ctx context.Context, keys []int64, byID map[int]*domain.Order) error {
	itemsQuery := `
	SELECT
		oi.order_id,
		p.product_id,
		p.name,
		oi.quantity,
		p.weight_kg,
		COALESCE(f.family_id, 0),
		COALESCE(f.name, '')
	FROM order_items oi
	JOIN products p ON p.product_id = oi.product_id
	LEFT JOIN families f ON f.family_id = p.family_id
	WHERE oi.order_id = ANY($1::int[])
	ORDER BY oi.order_id, p.product_id;
	`
	rows, err := r.DB.QueryContext(ctx, itemsQuery, keys)
	if err != nil {
		return fmt.Errorf("get orders: query order_items table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int
		var it domain.LineItem
		var family int
		if err := rows.Scan(
			&orderID, &it.ProductID, &it.ProductName, &it.Quantity,
			&it.WeightKg, &family, &it.FamilyName,
		); err != nil {
			return fmt.Errorf("get orders: scan item row: %w", err)
		}
		it.FamilyID = domain.FamilyID(family)

		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("get orders: item row iteration: %w", err)
	}

	return nil
}

func uniqueInt64(ids []int) []int64 {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, int64(id))
	}
	return out
}
