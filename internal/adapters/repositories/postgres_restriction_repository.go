package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/platform/obs"
)

// Postgres-backed implementation of the RestrictionRepository port.
type PostgresRestrictionRepository struct{ DB *sql.DB }

func NewPostgresRestrictionRepository(db *sql.DB) *PostgresRestrictionRepository {
	return &PostgresRestrictionRepository{DB: db}
}

// Return active restrictions with at least one endpoint in families,
// with family names resolved.
func (r *PostgresRestrictionRepository) ListActiveRestrictions(
	ctx context.Context,
	families []domain.FamilyID,
) (_ []domain.RestrictionEdge, err error) {
	defer obs.Time(ctx, "restrictions.ListActive")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres restriction repository: DB is nil")
	}
	if len(families) == 0 {
		return []domain.RestrictionEdge{}, nil
	}

	keys := make([]int64, 0, len(families))
	for _, f := range families {
		keys = append(keys, int64(f))
	}

	query := `
	SELECT
		r.family_a,
		r.family_b,
		fa.name,
		fb.name,
		r.reason
	FROM family_restrictions r
	JOIN families fa ON fa.family_id = r.family_a
	JOIN families fb ON fb.family_id = r.family_b
	WHERE r.active
		AND (r.family_a = ANY($1::int[]) OR r.family_b = ANY($1::int[]))
	ORDER BY r.family_a, r.family_b;
	`
	rows, err := r.DB.QueryContext(ctx, query, keys)
	if err != nil {
		return nil, fmt.Errorf("list restrictions: query family_restrictions table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.RestrictionEdge, 0, 16)
	for rows.Next() {
		var a, b int
		var e domain.RestrictionEdge
		if err := rows.Scan(&a, &b, &e.AName, &e.BName, &e.Reason); err != nil {
			return nil, fmt.Errorf("list restrictions: scan row: %w", err)
		}
		e.A, e.B = domain.FamilyID(a), domain.FamilyID(b)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list restrictions: row iteration: %w", err)
	}

	return out, nil
}
