package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fleet-dispatch-service/internal/api/dto"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/metrics"
	"fleet-dispatch-service/internal/platform/hashkey"
	"fleet-dispatch-service/internal/platform/obs"
	"fleet-dispatch-service/internal/ports"
	"fleet-dispatch-service/internal/services"

	"github.com/rs/zerolog/log"
)

var errStorageUnavailable = errors.New("order storage is not configured")

// StopResolver turns the stop part of a request into domain values.
type StopResolver struct {
	Orders ports.OrderRepository
	// Used when a request has no depot. May be nil.
	DefaultDepot *domain.Coordinates
}

func (s StopResolver) depot(req *dto.CoordinatesRequest) (domain.Coordinates, error) {
	if req == nil {
		if s.DefaultDepot == nil {
			return domain.Coordinates{}, domain.Invalid("depot", "is required")
		}
		return *s.DefaultDepot, nil
	}
	c := domain.Coordinates{Lat: *req.Latitude, Lon: *req.Longitude}
	if err := c.Validate("depot"); err != nil {
		return domain.Coordinates{}, err
	}
	return c, nil
}

// resolve returns the depot and stops of src. Stops come either inline or
// from orders; giving both is an error.
func (s StopResolver) resolve(ctx context.Context, src dto.StopSource) (domain.Coordinates, []domain.Stop, error) {
	depot, err := s.depot(src.Depot)
	if err != nil {
		return domain.Coordinates{}, nil, err
	}

	switch {
	case len(src.Stops) > 0 && len(src.OrderIDs) > 0:
		return domain.Coordinates{}, nil, domain.Invalid("stops", "give either stops or order_ids, not both")

	case len(src.OrderIDs) > 0:
		if s.Orders == nil {
			return domain.Coordinates{}, nil, errStorageUnavailable
		}
		orders, err := s.Orders.GetOrders(ctx, src.OrderIDs)
		if err != nil {
			return domain.Coordinates{}, nil, fmt.Errorf("resolve stops: %w", err)
		}
		stops := make([]domain.Stop, 0, len(orders))
		for _, o := range orders {
			stops = append(stops, o.Stop())
		}
		return depot, stops, nil

	default:
		stops := make([]domain.Stop, 0, len(src.Stops))
		for _, st := range src.Stops {
			stops = append(stops, domain.Stop{
				ID:       st.ID,
				Location: domain.Coordinates{Lat: *st.Latitude, Lon: *st.Longitude},
				WeightKg: st.WeightKg,
			})
		}
		return depot, stops, nil
	}
}

func restrictionsFromRequest(in []dto.RestrictionRequest) []domain.RestrictionEdge {
	out := make([]domain.RestrictionEdge, 0, len(in))
	for _, r := range in {
		out = append(out, domain.RestrictionEdge{
			A:      domain.FamilyID(r.FamilyA),
			B:      domain.FamilyID(r.FamilyB),
			AName:  r.NameA,
			BName:  r.NameB,
			Reason: r.Reason,
		})
	}
	return out
}

// loadRestrictions returns the inline restrictions when the request carried
// the field, otherwise the active ones stored for families.
func loadRestrictions(
	ctx context.Context,
	repo ports.RestrictionRepository,
	inline []dto.RestrictionRequest,
	families []domain.FamilyID,
) ([]domain.RestrictionEdge, error) {
	if inline != nil {
		return restrictionsFromRequest(inline), nil
	}
	if repo == nil {
		return nil, errStorageUnavailable
	}
	edges, err := repo.ListActiveRestrictions(ctx, families)
	if err != nil {
		return nil, fmt.Errorf("load restrictions: %w", err)
	}
	return edges, nil
}

func tabuOptions(req dto.TabuOptionsRequest, defaults services.TabuOptions) services.TabuOptions {
	opts := defaults
	if v := req.TabuListSize.Int(); v != nil {
		opts.TabuListSize = *v
	}
	if v := req.MaxIterations.Int(); v != nil {
		opts.MaxIterations = *v
	}
	if v := req.MaxStagnantIterations.Int(); v != nil {
		opts.MaxStagnantIterations = *v
	}
	return opts.Normalize()
}

func geneticOptions(req dto.GeneticParamsRequest) services.GeneticOptions {
	return services.GeneticOptions{
		PopulationSize:         req.PopulationSize.Int(),
		Generations:            req.Generations.Int(),
		CrossoverRate:          req.CrossoverRate.Float(),
		MutationRate:           req.MutationRate.Float(),
		InversionRate:          req.InversionRate.Float(),
		EliteCount:             req.EliteCount.Int(),
		TournamentSize:         req.TournamentSize.Int(),
		MaxStagnantGenerations: req.MaxStagnantGenerations.Int(),
	}
}

func summaryResponse(s services.RouteSummary) dto.RouteSummaryResponse {
	return dto.RouteSummaryResponse{
		StopIDs:    nonNil(s.StopIDs),
		DistanceKm: round2(s.DistanceKm),
		WeightKg:   round2(s.WeightKg),
		Algorithm:  s.Algorithm,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// resultCache wraps a ports.ResultCache so that cache failures only log.
type resultCache struct {
	cache ports.ResultCache
	ttl   time.Duration
}

func (c resultCache) key(prefix string, request any) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	k, err := hashkey.Key(prefix, request)
	if err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("result cache key failed")
		return "", false
	}
	return k, true
}

func (c resultCache) get(ctx context.Context, key string) ([]byte, bool) {
	payload, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.ResultCacheLookups.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("req_id", obs.RequestID(ctx)).Str("key", key).Msg("result cache get failed")
		return nil, false
	case !ok:
		metrics.ResultCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	default:
		metrics.ResultCacheLookups.WithLabelValues("hit").Inc()
		return payload, true
	}
}

func (c resultCache) set(ctx context.Context, key string, payload []byte) {
	if err := c.cache.Set(ctx, key, payload, c.ttl); err != nil {
		log.Warn().Err(err).Str("req_id", obs.RequestID(ctx)).Str("key", key).Msg("result cache set failed")
	}
}

// writeRaw sends an already encoded JSON body.
func writeRaw(w http.ResponseWriter, r *http.Request, status int, payload []byte, cacheStatus string) {
	w.Header().Set("Content-Type", "application/json")
	if cacheStatus != "" {
		w.Header().Set("X-Cache", cacheStatus)
	}
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		log.Warn().Err(err).Str("req_id", obs.RequestID(r.Context())).Msg("write response failed")
	}
}
