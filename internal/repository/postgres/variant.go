package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/pkg/database"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

const variantColumns = "id, product_id, name, description, is_active, created_at, updated_at"

// VariantRepository implements repository.VariantRepository using PostgreSQL.
type VariantRepository struct {
	pool database.DBTX
}

// NewVariantRepository creates a new PostgreSQL-backed variant repository.
func NewVariantRepository(pool database.DBTX) *VariantRepository {
	return &VariantRepository{pool: pool}
}

// Create inserts a new variant into the database.
func (r *VariantRepository) Create(ctx context.Context, v *domain.ProductVariant) error {
	query := `
		INSERT INTO product_variants (id, product_id, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		v.ID,
		v.ProductID,
		v.Name,
		v.Description,
		v.IsActive,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("variant", "name", v.Name)
		}
		return fmt.Errorf("insert variant: %w", err)
	}

	return nil
}

// GetByID retrieves a variant by its ID.
func (r *VariantRepository) GetByID(ctx context.Context, id string) (*domain.ProductVariant, error) {
	query := fmt.Sprintf(`SELECT %s FROM product_variants WHERE id = $1`, variantColumns)
	return r.scanVariant(ctx, query, id)
}

// GetByProductAndName retrieves a variant by its product and exact name.
func (r *VariantRepository) GetByProductAndName(ctx context.Context, productID, name string) (*domain.ProductVariant, error) {
	query := fmt.Sprintf(`SELECT %s FROM product_variants WHERE product_id = $1 AND name = $2`, variantColumns)
	return r.scanVariant(ctx, query, productID, name)
}

// ListByProductID returns all variants of a product.
func (r *VariantRepository) ListByProductID(ctx context.Context, productID string) ([]domain.ProductVariant, error) {
	query := fmt.Sprintf(`SELECT %s FROM product_variants WHERE product_id = $1 ORDER BY name`, variantColumns)

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	variants := make([]domain.ProductVariant, 0)
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(
			&v.ID,
			&v.ProductID,
			&v.Name,
			&v.Description,
			&v.IsActive,
			&v.CreatedAt,
			&v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan variant row: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variant rows: %w", err)
	}

	return variants, nil
}

// Update modifies an existing variant in the database.
func (r *VariantRepository) Update(ctx context.Context, v *domain.ProductVariant) error {
	v.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE product_variants
		SET name = $1, description = $2, is_active = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query,
		v.Name,
		v.Description,
		v.IsActive,
		v.UpdatedAt,
		v.ID,
	)
	if err != nil {
		return fmt.Errorf("update variant: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("variant", v.ID)
	}

	return nil
}

// Deactivate soft-deletes a variant.
func (r *VariantRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE product_variants SET is_active = false, updated_at = $1 WHERE id = $2 AND is_active = true`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate variant: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("variant", id)
	}

	return nil
}

func (r *VariantRepository) scanVariant(ctx context.Context, query string, args ...any) (*domain.ProductVariant, error) {
	var v domain.ProductVariant

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&v.ID,
		&v.ProductID,
		&v.Name,
		&v.Description,
		&v.IsActive,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan variant: %w", err)
	}

	return &v, nil
}
