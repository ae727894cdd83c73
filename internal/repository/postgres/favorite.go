package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/pkg/database"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

// FavoriteRepository implements repository.FavoriteRepository using PostgreSQL.
type FavoriteRepository struct {
	pool database.DBTX
}

// NewFavoriteRepository creates a new PostgreSQL-backed favorite repository.
func NewFavoriteRepository(pool database.DBTX) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// Add inserts a product into the user's favorites.
func (r *FavoriteRepository) Add(ctx context.Context, userID, productID string) error {
	query := `
		INSERT INTO favorites (user_id, product_id, created_at)
		VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, userID, productID, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("favorite", "product_id", productID)
		}
		return fmt.Errorf("insert favorite: %w", err)
	}

	return nil
}

// Remove deletes a product from the user's favorites.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, productID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`

	ct, err := r.pool.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("favorite", productID)
	}

	return nil
}

// List returns the user's favorites joined with product display data.
func (r *FavoriteRepository) List(ctx context.Context, userID string) ([]domain.FavoriteProduct, error) {
	query := `
		SELECT f.product_id, p.name, p.slug, p.brand, p.thumbnail_image, p.is_active, f.created_at
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]domain.FavoriteProduct, 0)
	for rows.Next() {
		var f domain.FavoriteProduct
		if err := rows.Scan(
			&f.ProductID,
			&f.Name,
			&f.Slug,
			&f.Brand,
			&f.ThumbnailImage,
			&f.IsActive,
			&f.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("scan favorite row: %w", err)
		}
		favorites = append(favorites, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite rows: %w", err)
	}

	return favorites, nil
}

// Exists checks whether a product is in the user's favorites.
func (r *FavoriteRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2)`,
		userID, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favorite exists: %w", err)
	}
	return exists, nil
}
