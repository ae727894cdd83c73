package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/pkg/database"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

// CartRepository implements repository.CartRepository using PostgreSQL.
// Every mutation recomputes the cart total inside the same transaction, so
// cart.total always equals the sum of its line subtotals.
type CartRepository struct {
	pool database.DBTX
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool database.DBTX) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetOrCreate returns the user's cart with items, creating it when absent.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	var c domain.Cart

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, total, created_at, updated_at FROM carts WHERE user_id = $1`,
		userID,
	).Scan(&c.ID, &c.UserID, &c.Total, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		now := time.Now().UTC()
		c = domain.Cart{
			ID:        uuid.New().String(),
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		// ON CONFLICT guards against a concurrent first request creating the
		// cart between our select and insert.
		err = r.pool.QueryRow(ctx, `
			INSERT INTO carts (id, user_id, total, created_at, updated_at)
			VALUES ($1, $2, 0, $3, $4)
			ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
			RETURNING id, user_id, total, created_at, updated_at`,
			c.ID, c.UserID, c.CreatedAt, c.UpdatedAt,
		).Scan(&c.ID, &c.UserID, &c.Total, &c.CreatedAt, &c.UpdatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	items, err := r.loadItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items

	return &c, nil
}

// AddItem inserts a cart line, or increases the quantity of an existing line
// for the same sale unit. The unit price stays frozen at its first-add value.
func (r *CartRepository) AddItem(ctx context.Context, cartID string, item *domain.CartItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO cart_items (id, cart_id, sale_unit_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $4 * $5)
		ON CONFLICT (cart_id, sale_unit_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity,
		    subtotal = (cart_items.quantity + EXCLUDED.quantity) * cart_items.unit_price`,
		item.ID, cartID, item.SaleUnitID, item.Quantity, item.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}

	if err := recomputeCartTotal(ctx, tx, cartID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// UpdateItemQuantity sets the quantity of a cart line and refreshes its subtotal.
func (r *CartRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE cart_items
		SET quantity = $1, subtotal = $1 * unit_price
		WHERE id = $2 AND cart_id = $3`,
		quantity, itemID, cartID,
	)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart item", itemID)
	}

	if err := recomputeCartTotal(ctx, tx, cartID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// RemoveItem deletes a cart line.
func (r *CartRepository) RemoveItem(ctx context.Context, cartID, itemID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`,
		itemID, cartID,
	)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart item", itemID)
	}

	if err := recomputeCartTotal(ctx, tx, cartID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Clear removes all lines and zeroes the cart total.
func (r *CartRepository) Clear(ctx context.Context, cartID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

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

// ItemsForCheckout returns the cart lines joined with catalog display data in
// one query, shaped as order items ready to freeze.
func (r *CartRepository) ItemsForCheckout(ctx context.Context, cartID string) ([]domain.OrderItem, error) {
	query := `
		SELECT ci.sale_unit_id, u.sku, u.description, v.name, p.name, p.brand, ci.quantity, ci.unit_price, ci.subtotal
		FROM cart_items ci
		JOIN sale_units u ON u.id = ci.sale_unit_id
		JOIN product_variants v ON v.id = u.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE ci.cart_id = $1
		ORDER BY p.name, v.name, u.sku`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart items for checkout: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.SaleUnitID,
			&item.SKU,
			&item.UnitDescription,
			&item.VariantName,
			&item.ProductName,
			&item.Brand,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan checkout item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkout item rows: %w", err)
	}

	return items, nil
}

// loadItems retrieves all lines of a cart with display data attached.
func (r *CartRepository) loadItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.sale_unit_id, u.sku, p.name, v.name, ci.quantity, ci.unit_price, ci.subtotal
		FROM cart_items ci
		JOIN sale_units u ON u.id = ci.sale_unit_id
		JOIN product_variants v ON v.id = u.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE ci.cart_id = $1
		ORDER BY p.name, v.name, u.sku`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.SaleUnitID,
			&item.SKU,
			&item.ProductName,
			&item.VariantName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan cart item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart item rows: %w", err)
	}

	return items, nil
}

// recomputeCartTotal rewrites the cart total from its line subtotals.
func recomputeCartTotal(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE carts
		SET total = COALESCE((SELECT SUM(subtotal) FROM cart_items WHERE cart_id = $1), 0),
		    updated_at = $2
		WHERE id = $1`,
		cartID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recompute cart total: %w", err)
	}
	return nil
}
