package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/internal/repository"
	"github.com/giovannicg/INMEDT/pkg/database"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

const productColumns = "id, category_id, name, slug, description, brand, main_image, thumbnail_image, gallery_images, is_active, created_at, updated_at"

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, category_id, name, slug, description, brand, main_image, thumbnail_image, gallery_images, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.CategoryID,
		p.Name,
		p.Slug,
		p.Description,
		p.Brand,
		p.MainImage,
		p.ThumbnailImage,
		p.GalleryImages,
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	return r.scanProduct(ctx, query, id)
}

// GetByName retrieves a product by its exact name.
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE name = $1`, productColumns)
	return r.scanProduct(ctx, query, name)
}

// GetDetail retrieves a product with its active variants and their active sale
// units in a single query using JSONB aggregation, avoiding the N+1 pattern of
// one query per variant.
func (r *ProductRepository) GetDetail(ctx context.Context, id string) (*domain.ProductDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			COALESCE(
				(SELECT JSONB_AGG(
					JSONB_BUILD_OBJECT(
						'id', v.id,
						'product_id', v.product_id,
						'name', v.name,
						'description', v.description,
						'is_active', v.is_active,
						'created_at', v.created_at,
						'updated_at', v.updated_at,
						'sale_units', COALESCE(
							(SELECT JSONB_AGG(
								JSONB_BUILD_OBJECT(
									'id', u.id,
									'variant_id', u.variant_id,
									'sku', u.sku,
									'description', u.description,
									'price', u.price,
									'stock', u.stock,
									'is_active', u.is_active,
									'created_at', u.created_at,
									'updated_at', u.updated_at
								) ORDER BY u.sku
							)
							FROM sale_units u
							WHERE u.variant_id = v.id AND u.is_active = true),
							'[]'::jsonb
						)
					) ORDER BY v.name
				)
				FROM product_variants v
				WHERE v.product_id = products.id AND v.is_active = true),
				'[]'::jsonb
			) AS variants
		FROM products
		WHERE id = $1`, productColumns)

	var (
		d            domain.ProductDetail
		variantsJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.CategoryID,
		&d.Name,
		&d.Slug,
		&d.Description,
		&d.Brand,
		&d.MainImage,
		&d.ThumbnailImage,
		&d.GalleryImages,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
		&variantsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product detail: %w", err)
	}

	d.Variants = []domain.VariantDetail{}
	if len(variantsJSON) > 0 && string(variantsJSON) != "null" {
		if err := json.Unmarshal(variantsJSON, &d.Variants); err != nil {
			return nil, fmt.Errorf("unmarshal product variants: %w", err)
		}
	}

	return &d, nil
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   int = 1
	)

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR brand ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY name
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var totalCount int
	products := make([]domain.Product, 0)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.CategoryID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Brand,
			&p.MainImage,
			&p.ThumbnailImage,
			&p.GalleryImages,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}

// Update modifies an existing product in the database.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET category_id = $1, name = $2, slug = $3, description = $4, brand = $5, is_active = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.pool.Exec(ctx, query,
		p.CategoryID,
		p.Name,
		p.Slug,
		p.Description,
		p.Brand,
		p.IsActive,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Deactivate soft-deletes a product.
func (r *ProductRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE products SET is_active = false, updated_at = $1 WHERE id = $2 AND is_active = true`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// UpdateImages sets the main, thumbnail, and gallery image paths.
func (r *ProductRepository) UpdateImages(ctx context.Context, id, mainImage, thumbnailImage string, gallery []string) error {
	query := `
		UPDATE products
		SET main_image = $1, thumbnail_image = $2, gallery_images = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query, mainImage, thumbnailImage, gallery, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update product images: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

func (r *ProductRepository) scanProduct(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	var p domain.Product

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.CategoryID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Brand,
		&p.MainImage,
		&p.ThumbnailImage,
		&p.GalleryImages,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}
