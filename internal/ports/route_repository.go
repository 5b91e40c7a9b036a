package ports

import (
	"context"

	"fleet-dispatch-service/internal/domain"
)

// Port: persistence of planned routes.
type RouteRepository interface {
	// Store a planned route and its ordered orders; return the new route id.
	SaveRoute(ctx context.Context, plan domain.RoutePlan) (int, error)
}
