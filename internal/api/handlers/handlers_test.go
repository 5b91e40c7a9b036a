package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"fleet-dispatch-service/internal/adapters/distance"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"

	"github.com/stretchr/testify/require"
)

const depotJSON = `{"latitude": -27.5969, "longitude": -48.5495}`

// Four stops a few kilometres around the depot.
const stopsJSON = `[
	{"id": 1, "latitude": -27.5800, "longitude": -48.5400, "weight": 10},
	{"id": 2, "latitude": -27.6100, "longitude": -48.5300, "weight": 20},
	{"id": 3, "latitude": -27.6200, "longitude": -48.5700, "weight": 30},
	{"id": 4, "latitude": -27.5750, "longitude": -48.5750, "weight": 40}
]`

var haversine = distance.NewHaversineProvider()

type fakeOrders struct {
	orders map[int]domain.Order
	calls  int
}

func (f *fakeOrders) GetOrders(_ context.Context, ids []int) ([]domain.Order, error) {
	f.calls++
	out := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		o, ok := f.orders[id]
		if !ok {
			return nil, fmt.Errorf("get orders: id %d: %w", id, ports.ErrNotFound)
		}
		out = append(out, o)
	}
	return out, nil
}

type fakeRestrictions struct {
	edges []domain.RestrictionEdge
	asked []domain.FamilyID
}

func (f *fakeRestrictions) ListActiveRestrictions(_ context.Context, families []domain.FamilyID) ([]domain.RestrictionEdge, error) {
	f.asked = slices.Clone(families)
	return f.edges, nil
}

type fakeRoutes struct {
	saved []domain.RoutePlan
	err   error
}

func (f *fakeRoutes) SaveRoute(_ context.Context, plan domain.RoutePlan) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, plan)
	return len(f.saved), nil
}

// demoOrders mirrors a small slice of the demo seed.
func demoOrders() *fakeOrders {
	return &fakeOrders{orders: map[int]domain.Order{
		101: {
			OrderID:  101,
			Customer: "Mercado Central",
			Invoice:  5001,
			Location: domain.Coordinates{Lat: -27.5954, Lon: -48.5480},
			Items: []domain.LineItem{
				{ProductID: 1, ProductName: "Bleach 5L", Quantity: 2, WeightKg: 5, FamilyID: 1, FamilyName: "Cleaning"},
				{ProductID: 3, ProductName: "Rice 5kg", Quantity: 3, WeightKg: 5, FamilyID: 2, FamilyName: "Food"},
				{ProductID: 10, ProductName: "Paper bags", Quantity: 10, WeightKg: 0.5},
			},
		},
		102: {
			OrderID:  102,
			Customer: "Agro Sul",
			Location: domain.Coordinates{Lat: -27.6136, Lon: -48.6366},
			Items: []domain.LineItem{
				{ProductID: 6, ProductName: "Herbicide 1L", Quantity: 4, WeightKg: 1, FamilyID: 3, FamilyName: "Pesticide"},
			},
		},
		103: {
			OrderID:  103,
			Customer: "Empório Lagoa",
			Location: domain.Coordinates{Lat: -27.6026, Lon: -48.4703},
			Items: []domain.LineItem{
				{ProductID: 4, ProductName: "Beans 1kg", Quantity: 20, WeightKg: 1, FamilyID: 2, FamilyName: "Food"},
			},
		},
	}}
}

func doRequest(t *testing.T, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, rec)["error"]
}
