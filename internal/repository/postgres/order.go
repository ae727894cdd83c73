package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/internal/repository"
	"github.com/giovannicg/INMEDT/pkg/database"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

const orderColumns = `id, order_number, user_id, status, subtotal, shipping_cost, tax, total,
	shipping_address, contact_phone, city, sector, notes, created_at, updated_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateFromCart persists the order and its items, decrements stock, and
// clears the cart in one transaction. A sale unit whose remaining stock
// cannot cover its line quantity fails the whole checkout.
func (r *OrderRepository) CreateFromCart(ctx context.Context, order *domain.Order, cartID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		order.ID, order.OrderNumber, order.UserID, order.Status,
		order.Subtotal, order.ShippingCost, order.Tax, order.Total,
		order.ShippingAddress, order.ContactPhone, order.City, order.Sector, order.Notes,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, sale_unit_id, sku, unit_description, variant_name, product_name, brand, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			item.ID, order.ID, item.SaleUnitID, item.SKU, item.UnitDescription,
			item.VariantName, item.ProductName, item.Brand,
			item.Quantity, item.UnitPrice, item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		// Conditional decrement: zero rows means not enough stock left.
		ct, err := tx.Exec(ctx,
			`UPDATE sale_units SET stock = stock - $1 WHERE id = $2 AND stock >= $1`,
			item.Quantity, item.SaleUnitID,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.InsufficientStock(item.SKU)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE carts SET total = 0, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), cartID,
	); err != nil {
		return fmt.Errorf("zero cart total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its items in a single query.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT o.id, o.order_number, o.user_id, o.status,
		       o.subtotal, o.shipping_cost, o.tax, o.total,
		       o.shipping_address, o.contact_phone, o.city, o.sector, o.notes,
		       o.created_at, o.updated_at,
		       COALESCE(
		           JSONB_AGG(
		               JSONB_BUILD_OBJECT(
		                   'id', i.id,
		                   'order_id', i.order_id,
		                   'sale_unit_id', i.sale_unit_id,
		                   'sku', i.sku,
		                   'unit_description', i.unit_description,
		                   'variant_name', i.variant_name,
		                   'product_name', i.product_name,
		                   'brand', i.brand,
		                   'quantity', i.quantity,
		                   'unit_price', i.unit_price,
		                   'subtotal', i.subtotal
		               ) ORDER BY i.product_name, i.sku
		           ) FILTER (WHERE i.id IS NOT NULL),
		           '[]'::jsonb
		       ) AS items
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE o.id = $1
		GROUP BY o.id`

	var (
		o         domain.Order
		itemsJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status,
		&o.Subtotal, &o.ShippingCost, &o.Tax, &o.Total,
		&o.ShippingAddress, &o.ContactPhone, &o.City, &o.Sector, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
		&itemsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	o.Items = []domain.OrderItem{}
	if len(itemsJSON) > 0 && string(itemsJSON) != "null" && string(itemsJSON) != "[]" {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	}

	return &o, nil
}

// List returns orders matching the filter, newest first, with pagination.
// Items are not loaded; use GetByID for a full order.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	query := `SELECT ` + orderColumns + `, count(*) OVER() AS total_count FROM orders`

	var (
		conditions []string
		args       []any
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var total int
	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.Status,
			&o.Subtotal, &o.ShippingCost, &o.Tax, &o.Total,
			&o.ShippingAddress, &o.ContactPhone, &o.City, &o.Sector, &o.Notes,
			&o.CreatedAt, &o.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus sets an order's status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// UpdateShippingInfo rewrites the delivery details of an order. Status
// checks belong to the service layer.
func (r *OrderRepository) UpdateShippingInfo(ctx context.Context, id, address, phone, city, sector, notes string) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET shipping_address = $1, contact_phone = $2, city = $3, sector = $4, notes = $5, updated_at = $6
		WHERE id = $7`,
		address, phone, city, sector, notes, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update order shipping info: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}
