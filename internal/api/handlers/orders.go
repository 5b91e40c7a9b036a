package handlers

import (
	"context"
	"net/http"

	"fleet-dispatch-service/internal/api/dto"
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
	"fleet-dispatch-service/internal/services"
)

// OrderHandler groups order items by shipping compatibility.
type OrderHandler struct {
	Orders       ports.OrderRepository
	Restrictions ports.RestrictionRepository
}

// Conflicts reports how an order's items must be grouped to keep restricted
// families apart.
func (h *OrderHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.ConflictsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, res, err := h.resolveOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "order conflicts", err)
		return
	}

	out := dto.ConflictsResponse{
		NeedsSplit:      res.NeedsSplit,
		GroupCount:      res.GroupCount,
		Groups:          make([]dto.GroupResponse, 0, len(res.Groups)),
		Conflicts:       nonNil(res.Conflicts),
		ConflictSummary: res.Summary,
	}
	for _, g := range res.Groups {
		ids := make([]int, 0, len(g.FamilyIDs))
		for _, f := range g.FamilyIDs {
			ids = append(ids, int(f))
		}
		out.Groups = append(out.Groups, dto.GroupResponse{
			Title:         g.Title,
			FamilyIDs:     ids,
			FamilyNames:   nonNil(g.FamilyNames),
			TotalQuantity: g.TotalQuantity,
			Items:         itemResponses(g.Items),
		})
	}

	writeJSON(w, r, http.StatusOK, out)
}

// Split divides an order into one fragment per conflict-free group.
func (h *OrderHandler) Split(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.SplitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, res, err := h.resolveOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "split order", err)
		return
	}

	fragments, err := services.SplitOrder(order, res)
	if err != nil {
		writeServiceError(w, r, "split order", err)
		return
	}

	out := dto.SplitResponse{
		OrderID:         order.OrderID,
		Fragments:       make([]dto.FragmentResponse, 0, len(fragments)),
		ConflictSummary: res.Summary,
	}
	titles := make([]string, 0, len(res.Groups))
	for _, g := range res.Groups {
		if len(g.Items) > 0 {
			titles = append(titles, g.Title)
		}
	}
	for i, f := range fragments {
		out.Fragments = append(out.Fragments, dto.FragmentResponse{
			Title:    titles[i],
			Customer: f.Customer,
			Invoice:  f.Invoice,
			WeightKg: round2(f.TotalWeightKg()),
			Items:    itemResponses(f.Items),
		})
	}

	writeJSON(w, r, http.StatusOK, out)
}

// resolveOrder loads or builds the order and resolves its family conflicts.
func (h *OrderHandler) resolveOrder(ctx context.Context, req dto.ConflictsRequest) (domain.Order, services.ConflictResolution, error) {
	var order domain.Order

	switch {
	case req.OrderID > 0 && len(req.Items) > 0:
		return order, services.ConflictResolution{}, domain.Invalid("items", "give either order_id or items, not both")

	case req.OrderID > 0:
		if h.Orders == nil {
			return order, services.ConflictResolution{}, errStorageUnavailable
		}
		orders, err := h.Orders.GetOrders(ctx, []int{req.OrderID})
		if err != nil {
			return order, services.ConflictResolution{}, err
		}
		order = orders[0]

	case len(req.Items) > 0:
		order.Items = make([]domain.LineItem, 0, len(req.Items))
		for _, it := range req.Items {
			order.Items = append(order.Items, domain.LineItem{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				WeightKg:    it.WeightKg,
				FamilyID:    domain.FamilyID(it.FamilyID),
				FamilyName:  it.FamilyName,
			})
		}

	default:
		return order, services.ConflictResolution{}, domain.Invalid("items", "give order_id or items")
	}

	families := make([]domain.FamilyID, 0, len(order.Items))
	for _, it := range order.Items {
		if it.FamilyID != 0 {
			families = append(families, it.FamilyID)
		}
	}

	restrictions, err := loadRestrictions(ctx, h.Restrictions, req.Restrictions, families)
	if err != nil {
		return order, services.ConflictResolution{}, err
	}

	return order, services.ResolveFamilyConflicts(order.Items, restrictions), nil
}

func itemResponses(items []domain.LineItem) []dto.LineItemResponse {
	out := make([]dto.LineItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LineItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			WeightKg:    it.WeightKg,
			FamilyID:    int(it.FamilyID),
			FamilyName:  it.FamilyName,
		})
	}
	return out
}
