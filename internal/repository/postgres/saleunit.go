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

const saleUnitColumns = "id, variant_id, sku, description, price, stock, is_active, created_at, updated_at"

// SaleUnitRepository implements repository.SaleUnitRepository using PostgreSQL.
type SaleUnitRepository struct {
	pool database.DBTX
}

// NewSaleUnitRepository creates a new PostgreSQL-backed sale unit repository.
func NewSaleUnitRepository(pool database.DBTX) *SaleUnitRepository {
	return &SaleUnitRepository{pool: pool}
}

// Create inserts a new sale unit into the database.
func (r *SaleUnitRepository) Create(ctx context.Context, u *domain.SaleUnit) error {
	query := `
		INSERT INTO sale_units (id, variant_id, sku, description, price, stock, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.VariantID,
		u.SKU,
		u.Description,
		u.Price,
		u.Stock,
		u.IsActive,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("sale unit", "sku", u.SKU)
		}
		return fmt.Errorf("insert sale unit: %w", err)
	}

	return nil
}

// GetByID retrieves a sale unit by its ID.
func (r *SaleUnitRepository) GetByID(ctx context.Context, id string) (*domain.SaleUnit, error) {
	query := fmt.Sprintf(`SELECT %s FROM sale_units WHERE id = $1`, saleUnitColumns)
	return r.scanSaleUnit(ctx, query, id)
}

// GetBySKU retrieves a sale unit by its SKU.
func (r *SaleUnitRepository) GetBySKU(ctx context.Context, sku string) (*domain.SaleUnit, error) {
	query := fmt.Sprintf(`SELECT %s FROM sale_units WHERE sku = $1`, saleUnitColumns)
	return r.scanSaleUnit(ctx, query, sku)
}

// ListByVariantID returns all sale units of a variant.
func (r *SaleUnitRepository) ListByVariantID(ctx context.Context, variantID string) ([]domain.SaleUnit, error) {
	query := fmt.Sprintf(`SELECT %s FROM sale_units WHERE variant_id = $1 ORDER BY sku`, saleUnitColumns)

	rows, err := r.pool.Query(ctx, query, variantID)
	if err != nil {
		return nil, fmt.Errorf("list sale units: %w", err)
	}
	defer rows.Close()

	units := make([]domain.SaleUnit, 0)
	for rows.Next() {
		var u domain.SaleUnit
		if err := rows.Scan(
			&u.ID,
			&u.VariantID,
			&u.SKU,
			&u.Description,
			&u.Price,
			&u.Stock,
			&u.IsActive,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale unit row: %w", err)
		}
		units = append(units, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale unit rows: %w", err)
	}

	return units, nil
}

// Update modifies an existing sale unit in the database.
func (r *SaleUnitRepository) Update(ctx context.Context, u *domain.SaleUnit) error {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE sale_units
		SET sku = $1, description = $2, price = $3, stock = $4, is_active = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.pool.Exec(ctx, query,
		u.SKU,
		u.Description,
		u.Price,
		u.Stock,
		u.IsActive,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("sale unit", "sku", u.SKU)
		}
		return fmt.Errorf("update sale unit: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("sale unit", u.ID)
	}

	return nil
}

// Deactivate soft-deletes a sale unit.
func (r *SaleUnitRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE sale_units SET is_active = false, updated_at = $1 WHERE id = $2 AND is_active = true`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate sale unit: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("sale unit", id)
	}

	return nil
}

// SKUExists reports whether a sale unit with the given SKU exists.
func (r *SaleUnitRepository) SKUExists(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM sale_units WHERE sku = $1)`, sku).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sku exists: %w", err)
	}
	return exists, nil
}

func (r *SaleUnitRepository) scanSaleUnit(ctx context.Context, query string, args ...any) (*domain.SaleUnit, error) {
	var u domain.SaleUnit

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.VariantID,
		&u.SKU,
		&u.Description,
		&u.Price,
		&u.Stock,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan sale unit: %w", err)
	}

	return &u, nil
}
