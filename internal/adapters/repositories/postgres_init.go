package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createFamiliesQuery := `
	CREATE TABLE IF NOT EXISTS families (
		family_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);
	`

	createProductsQuery := `
	CREATE TABLE IF NOT EXISTS products (
		product_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		weight_kg DOUBLE PRECISION NOT NULL CHECK (weight_kg >= 0),
		family_id INTEGER REFERENCES families(family_id)
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		order_id INTEGER PRIMARY KEY,
		customer TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		invoice INTEGER,
		note TEXT NOT NULL DEFAULT '',
		ordered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		latitude DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180)
	);
	`

	createOrderItemsQuery := `
	CREATE TABLE IF NOT EXISTS order_items (
		order_id INTEGER NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(product_id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		PRIMARY KEY (order_id, product_id)
	);
	`

	// Pairs are stored with family_a < family_b so each restriction has one row.
	createRestrictionsQuery := `
	CREATE TABLE IF NOT EXISTS family_restrictions (
		family_a INTEGER NOT NULL REFERENCES families(family_id),
		family_b INTEGER NOT NULL REFERENCES families(family_id),
		reason TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		PRIMARY KEY (family_a, family_b),
		CHECK (family_a < family_b)
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		route_id SERIAL PRIMARY KEY,
		vehicle_id INTEGER NOT NULL,
		route_date DATE NOT NULL,
		capacity_kg DOUBLE PRECISION NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		weight_kg DOUBLE PRECISION NOT NULL,
		algorithm TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createRouteOrdersQuery := `
	CREATE TABLE IF NOT EXISTS route_orders (
		route_id INTEGER NOT NULL REFERENCES routes(route_id) ON DELETE CASCADE,
		sequence INTEGER NOT NULL,
		order_id INTEGER NOT NULL REFERENCES orders(order_id),
		PRIMARY KEY (route_id, sequence),
		UNIQUE (route_id, order_id)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_family_restrictions_family_b
	ON family_restrictions(family_b) WHERE active;
	`

	statements := []string{
		createFamiliesQuery,
		createProductsQuery,
		createOrdersQuery,
		createOrderItemsQuery,
		createRestrictionsQuery,
		createRoutesQuery,
		createRouteOrdersQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type FamilySeed struct {
	FamilyID int    `json:"family_id"`
	Name     string `json:"name"`
}

type ProductSeed struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	WeightKg  float64 `json:"weight_kg"`
	FamilyID  *int    `json:"family_id"`
}

type RestrictionSeed struct {
	FamilyA int    `json:"family_a"`
	FamilyB int    `json:"family_b"`
	Reason  string `json:"reason"`
}

type OrderItemSeed struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type OrderSeed struct {
	OrderID   int             `json:"order_id"`
	Customer  string          `json:"customer"`
	City      string          `json:"city"`
	Invoice   *int            `json:"invoice"`
	Note      string          `json:"note"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Items     []OrderItemSeed `json:"items"`
}

// Seed is the layout of the demo data file.
type Seed struct {
	Families     []FamilySeed      `json:"families"`
	Products     []ProductSeed     `json:"products"`
	Restrictions []RestrictionSeed `json:"restrictions"`
	Orders       []OrderSeed       `json:"orders"`
}

// Populate the database with demo data from a JSON file. Rows are upserted,
// so seeding twice is harmless.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed: DB is nil")
	}

	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}
	if err := validateSeed(&data); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range data.Families {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO families (family_id, name) VALUES ($1, $2)
		ON CONFLICT (family_id) DO UPDATE SET name = EXCLUDED.name;
		`, f.FamilyID, f.Name); err != nil {
			return fmt.Errorf("seed: insert family_id=%d: %w", f.FamilyID, err)
		}
	}

	for _, p := range data.Products {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO products (product_id, name, weight_kg, family_id) VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id) DO UPDATE
		SET name = EXCLUDED.name,
			weight_kg = EXCLUDED.weight_kg,
			family_id = EXCLUDED.family_id;
		`, p.ProductID, p.Name, p.WeightKg, p.FamilyID); err != nil {
			return fmt.Errorf("seed: insert product_id=%d: %w", p.ProductID, err)
		}
	}

	for _, r := range data.Restrictions {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO family_restrictions (family_a, family_b, reason) VALUES ($1, $2, $3)
		ON CONFLICT (family_a, family_b) DO UPDATE
		SET reason = EXCLUDED.reason,
			active = TRUE;
		`, r.FamilyA, r.FamilyB, r.Reason); err != nil {
			return fmt.Errorf("seed: insert restriction %d-%d: %w", r.FamilyA, r.FamilyB, err)
		}
	}

	for _, o := range data.Orders {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (order_id, customer, city, invoice, note, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id) DO UPDATE
		SET customer = EXCLUDED.customer,
			city = EXCLUDED.city,
			invoice = EXCLUDED.invoice,
			note = EXCLUDED.note,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude;
		`, o.OrderID, o.Customer, o.City, o.Invoice, o.Note, o.Latitude, o.Longitude); err != nil {
			return fmt.Errorf("seed: insert order_id=%d: %w", o.OrderID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1;`, o.OrderID); err != nil {
			return fmt.Errorf("seed: clear items order_id=%d: %w", o.OrderID, err)
		}
		for _, it := range o.Items {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3);
			`, o.OrderID, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("seed: insert item order_id=%d product_id=%d: %w", o.OrderID, it.ProductID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}

// validateSeed checks ids and normalizes restriction pairs to family_a < family_b.
func validateSeed(s *Seed) error {
	for i, f := range s.Families {
		if f.FamilyID <= 0 {
			return fmt.Errorf("invalid family_id at index %d: %d", i+1, f.FamilyID)
		}
		s.Families[i].Name = strings.TrimSpace(f.Name)
		if s.Families[i].Name == "" {
			return fmt.Errorf("family at index %d: name cannot be empty", i+1)
		}
	}

	for i, p := range s.Products {
		if p.ProductID <= 0 {
			return fmt.Errorf("invalid product_id at index %d: %d", i+1, p.ProductID)
		}
		if p.WeightKg < 0 {
			return fmt.Errorf("product at index %d: weight_kg cannot be negative", i+1)
		}
	}

	for i, r := range s.Restrictions {
		if r.FamilyA <= 0 || r.FamilyB <= 0 || r.FamilyA == r.FamilyB {
			return fmt.Errorf("invalid restriction at index %d: %d-%d", i+1, r.FamilyA, r.FamilyB)
		}
		if r.FamilyA > r.FamilyB {
			s.Restrictions[i].FamilyA, s.Restrictions[i].FamilyB = r.FamilyB, r.FamilyA
		}
	}

	for i, o := range s.Orders {
		if o.OrderID <= 0 {
			return fmt.Errorf("invalid order_id at index %d: %d", i+1, o.OrderID)
		}
		if strings.TrimSpace(o.Customer) == "" {
			return fmt.Errorf("order at index %d: customer cannot be empty", i+1)
		}
		for j, it := range o.Items {
			if it.Quantity <= 0 {
				return fmt.Errorf("order at index %d: item %d: quantity must be positive", i+1, j+1)
			}
		}
	}

	return nil
}
