package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/platform/obs"
)

// Postgres-backed implementation of the RouteRepository port.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

// Store the route header and its ordered orders in one transaction.
func (r *PostgresRouteRepository) SaveRoute(ctx context.Context, plan domain.RoutePlan) (_ int, err error) {
	defer obs.Time(ctx, "routes.SaveRoute")(&err)

	if r.DB == nil {
		return 0, errors.New("postgres route repository: DB is nil")
	}
	if len(plan.OrderIDs) == 0 {
		return 0, domain.Invalid("order_ids", "a route needs at least one order")
	}
	if strings.TrimSpace(plan.Status) == "" {
		plan.Status = "planned"
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var routeID int
	err = tx.QueryRowContext(ctx, `
	INSERT INTO routes (vehicle_id, route_date, capacity_kg, distance_km, weight_kg, algorithm, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING route_id;
	`,
		plan.VehicleID, plan.RouteDate, plan.CapacityKg, plan.DistanceKm,
		plan.WeightKg, plan.Algorithm, plan.Status,
	).Scan(&routeID)
	if err != nil {
		return 0, fmt.Errorf("save route: insert routes row: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_orders (route_id, sequence, order_id) VALUES ($1, $2, $3);
	`)
	if err != nil {
		return 0, fmt.Errorf("save route: db prepare: %w", err)
	}
	defer stmt.Close()

	for seq, orderID := range plan.OrderIDs {
		if _, err := stmt.ExecContext(ctx, routeID, seq+1, orderID); err != nil {
			return 0, fmt.Errorf("save route: insert order_id=%d: %w", orderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save route: commit tx: %w", err)
	}

	return routeID, nil
}
