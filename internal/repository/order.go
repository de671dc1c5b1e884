package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/microshop/checkout-service/internal/checkout"
)

const (
	insertOrderSQL = `INSERT INTO orders (
		id, user_id, user_currency, email, shipping_tracking_id,
		shipping_cost_currency, shipping_cost_units, shipping_cost_nanos,
		total_currency, total_units, total_nanos,
		shipping_address, items, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	findOrdersByUserSQL = `SELECT
		id, user_id, user_currency, email, shipping_tracking_id,
		shipping_cost_currency, shipping_cost_units, shipping_cost_nanos,
		total_currency, total_units, total_nanos,
		shipping_address, items, created_at
	FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
)

var _ checkout.OrderStore = (*OrderRepository)(nil)

// OrderRepository implements checkout.OrderStore backed by PostgreSQL.
// Orders are append-only: there is no update path.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Save persists a placed order. Money amounts are stored flattened into
// currency, units and nanos columns so nothing ever goes through floating
// point; the address and items are serialized into JSONB columns.
func (r *OrderRepository) Save(ctx context.Context, o *checkout.OrderResult) error {
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, insertOrderSQL,
		o.OrderID, o.UserID, o.UserCurrency, o.Email, o.ShippingTrackingID,
		o.ShippingCost.CurrencyCode, o.ShippingCost.Units, o.ShippingCost.Nanos,
		o.TotalCost.CurrencyCode, o.TotalCost.Units, o.TotalCost.Nanos,
		addressJSON, itemsJSON, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving order %q: %w", o.OrderID, err)
	}

	return nil
}

// FindByUser returns the user's orders, most recent first.
func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]checkout.OrderResult, error) {
	rows, err := r.pool.Query(ctx, findOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("finding orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func scanOrder(row pgx.CollectableRow) (checkout.OrderResult, error) {
	var (
		o           checkout.OrderResult
		addressJSON []byte
		itemsJSON   []byte
	)
	err := row.Scan(
		&o.OrderID, &o.UserID, &o.UserCurrency, &o.Email, &o.ShippingTrackingID,
		&o.ShippingCost.CurrencyCode, &o.ShippingCost.Units, &o.ShippingCost.Nanos,
		&o.TotalCost.CurrencyCode, &o.TotalCost.Units, &o.TotalCost.Nanos,
		&addressJSON, &itemsJSON, &o.CreatedAt,
	)
	if err != nil {
		return checkout.OrderResult{}, fmt.Errorf("scanning order: %w", err)
	}

	if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
		return checkout.OrderResult{}, fmt.Errorf("unmarshaling shipping address: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return checkout.OrderResult{}, fmt.Errorf("unmarshaling order items: %w", err)
	}

	return o, nil
}
