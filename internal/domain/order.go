package domain

import "time"

// Represents one line of an order: a product, its quantity, and the family
// the product belongs to.
type LineItem struct {
	ProductID   int
	ProductName string
	Quantity    int
	WeightKg    float64
	FamilyID    FamilyID
	FamilyName  string
}

// Represents a customer order with its delivery location and line items.
// Fragments produced by splitting an order keep every header field.
type Order struct {
	OrderID   int
	Customer  string
	City      string
	Invoice   int
	Note      string
	OrderedAt time.Time
	Location  Coordinates
	Items     []LineItem
}

// TotalWeightKg sums the item weights times quantities.
func (o Order) TotalWeightKg() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.WeightKg * float64(it.Quantity)
	}
	return total
}

// Stop projects the order onto the routing model.
func (o Order) Stop() Stop {
	return Stop{ID: o.OrderID, Location: o.Location, WeightKg: o.TotalWeightKg()}
}
