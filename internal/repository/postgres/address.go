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

const addressColumns = "id, user_id, label, address_line, city, sector, phone, notes, is_default, is_active, created_at, updated_at"

// AddressRepository implements repository.AddressRepository using PostgreSQL.
type AddressRepository struct {
	pool database.DBTX
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool database.DBTX) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// Create inserts a new address into the database.
func (r *AddressRepository) Create(ctx context.Context, a *domain.Address) error {
	query := `
		INSERT INTO addresses (id, user_id, label, address_line, city, sector, phone, notes, is_default, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.Label,
		a.AddressLine,
		a.City,
		a.Sector,
		a.Phone,
		a.Notes,
		a.IsDefault,
		a.IsActive,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}

	return nil
}

// GetByID retrieves an address by its ID.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	query := fmt.Sprintf(`SELECT %s FROM addresses WHERE id = $1`, addressColumns)

	var a domain.Address
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.UserID,
		&a.Label,
		&a.AddressLine,
		&a.City,
		&a.Sector,
		&a.Phone,
		&a.Notes,
		&a.IsDefault,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan address: %w", err)
	}

	return &a, nil
}

// ListByUserID returns all active addresses for the given user.
func (r *AddressRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Address, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM addresses
		WHERE user_id = $1 AND is_active = true
		ORDER BY is_default DESC, created_at DESC`, addressColumns)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]domain.Address, 0)
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Label,
			&a.AddressLine,
			&a.City,
			&a.Sector,
			&a.Phone,
			&a.Notes,
			&a.IsDefault,
			&a.IsActive,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address rows: %w", err)
	}

	return addresses, nil
}

// Update modifies an existing address in the database.
func (r *AddressRepository) Update(ctx context.Context, a *domain.Address) error {
	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE addresses
		SET label = $1, address_line = $2, city = $3, sector = $4, phone = $5, notes = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.pool.Exec(ctx, query,
		a.Label,
		a.AddressLine,
		a.City,
		a.Sector,
		a.Phone,
		a.Notes,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("address", a.ID)
	}

	return nil
}

// Deactivate soft-deletes an address.
func (r *AddressRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE addresses SET is_active = false, is_default = false, updated_at = $1 WHERE id = $2 AND is_active = true`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate address: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("address", id)
	}

	return nil
}

// SetDefault marks the specified address as the default for the user,
// unsetting any previous default within a transaction.
func (r *AddressRepository) SetDefault(ctx context.Context, userID, addressID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`UPDATE addresses SET is_default = false WHERE user_id = $1 AND is_default = true`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("unset default address: %w", err)
	}

	ct, err := tx.Exec(ctx,
		`UPDATE addresses SET is_default = true WHERE id = $1 AND user_id = $2 AND is_active = true`,
		addressID, userID,
	)
	if err != nil {
		return fmt.Errorf("set default address: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("address", addressID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
