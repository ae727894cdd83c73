package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/internal/repository"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
	"github.com/giovannicg/INMEDT/pkg/slug"
)

// maxSKUAttempts bounds the search for a free auto-generated SKU.
const maxSKUAttempts = 999

// AdminCatalogService implements the admin-side catalog management logic.
type AdminCatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	saleUnitRepo repository.SaleUnitRepository
	cache        CatalogCache
	logger       *slog.Logger
}

// NewAdminCatalogService creates a new admin catalog service.
func NewAdminCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	saleUnitRepo repository.SaleUnitRepository,
	cache CatalogCache,
	logger *slog.Logger,
) *AdminCatalogService {
	return &AdminCatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		saleUnitRepo: saleUnitRepo,
		cache:        cache,
		logger:       logger,
	}
}

// --- Input types ---

// CategoryInput holds the parameters for creating or updating a category.
type CategoryInput struct {
	Name        string
	Description string
}

// ProductInput holds the parameters for creating a product.
type ProductInput struct {
	CategoryID  string
	Name        string
	Description string
	Brand       string
}

// UpdateProductInput holds the parameters for updating a product.
type UpdateProductInput struct {
	CategoryID  *string
	Name        *string
	Description *string
	Brand       *string
}

// VariantInput holds the parameters for creating or updating a variant.
type VariantInput struct {
	Name        string
	Description string
}

// SaleUnitInput holds the parameters for creating a sale unit. An empty SKU
// gets one generated from the product and variant names.
type SaleUnitInput struct {
	SKU         string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// UpdateSaleUnitInput holds the parameters for updating a sale unit.
type UpdateSaleUnitInput struct {
	Description *string
	Price       *decimal.Decimal
	Stock       *int
}

// --- Category Operations ---

// CreateCategory creates a new category.
func (s *AdminCatalogService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.invalidateCategories(ctx)

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("name", category.Name),
	)

	return category, nil
}

// ListCategories returns all categories, including inactive ones.
func (s *AdminCatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory updates a category's name and description.
func (s *AdminCatalogService) UpdateCategory(ctx context.Context, categoryID string, input CategoryInput) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("get category for update: %w", err)
	}

	if input.Name != "" && input.Name != category.Name {
		category.Name = input.Name
		category.Slug = slug.Generate(input.Name)
	}
	if input.Description != "" {
		category.Description = input.Description
	}
	category.UpdatedAt = time.Now().UTC()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	s.invalidateCategories(ctx)

	s.logger.InfoContext(ctx, "category updated",
		slog.String("category_id", categoryID),
	)

	return category, nil
}

// DeleteCategory soft-deletes a category. Its products stay but disappear
// from category-filtered listings.
func (s *AdminCatalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := s.categoryRepo.Deactivate(ctx, categoryID); err != nil {
		return fmt.Errorf("deactivate category: %w", err)
	}

	s.invalidateCategories(ctx)

	s.logger.InfoContext(ctx, "category deactivated",
		slog.String("category_id", categoryID),
	)

	return nil
}

// --- Product Operations ---

// CreateProduct creates a new product under a category.
func (s *AdminCatalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.CategoryID == "" {
		return nil, apperrors.InvalidInput("category id is required")
	}

	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		return nil, fmt.Errorf("get category for product: %w", err)
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		Brand:       input.Brand,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// ListProducts returns all products matching the filter, inactive included.
func (s *AdminCatalogService) ListProducts(ctx context.Context, search string, categoryID *string, page, perPage int) ([]domain.Product, int, error) {
	products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
		Search:     search,
		CategoryID: categoryID,
		ActiveOnly: false,
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// GetProduct returns a product with its variants and sale units, bypassing
// the public cache so admins always see fresh data.
func (s *AdminCatalogService) GetProduct(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	detail, err := s.productRepo.GetDetail(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product detail: %w", err)
	}
	return detail, nil
}

// UpdateProduct updates a product's fields.
func (s *AdminCatalogService) UpdateProduct(ctx context.Context, productID string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, fmt.Errorf("get category for product update: %w", err)
		}
		product.CategoryID = *input.CategoryID
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}
		if *input.Name != product.Name {
			product.Name = *input.Name
			product.Slug = slug.Generate(*input.Name)
		}
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateProduct(ctx, productID)

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", productID),
	)

	return product, nil
}

// DeleteProduct soft-deletes a product. Existing order lines keep their
// denormalized copy of its data.
func (s *AdminCatalogService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.productRepo.Deactivate(ctx, productID); err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}

	s.invalidateProduct(ctx, productID)

	s.logger.InfoContext(ctx, "product deactivated",
		slog.String("product_id", productID),
	)

	return nil
}

// --- Variant Operations ---

// CreateVariant creates a new variant under a product.
func (s *AdminCatalogService) CreateVariant(ctx context.Context, productID string, input VariantInput) (*domain.ProductVariant, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("variant name is required")
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("get product for variant: %w", err)
	}

	if existing, err := s.variantRepo.GetByProductAndName(ctx, productID, input.Name); err == nil && existing != nil {
		return nil, apperrors.AlreadyExists("variant", "name", input.Name)
	}

	now := time.Now().UTC()
	variant := &domain.ProductVariant{
		ID:          uuid.New().String(),
		ProductID:   productID,
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.variantRepo.Create(ctx, variant); err != nil {
		return nil, fmt.Errorf("create variant: %w", err)
	}

	s.invalidateProduct(ctx, productID)

	s.logger.InfoContext(ctx, "variant created",
		slog.String("variant_id", variant.ID),
		slog.String("product_id", productID),
	)

	return variant, nil
}

// UpdateVariant updates a variant's fields.
func (s *AdminCatalogService) UpdateVariant(ctx context.Context, variantID string, input VariantInput) (*domain.ProductVariant, error) {
	variant, err := s.variantRepo.GetByID(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("get variant for update: %w", err)
	}

	if input.Name != "" {
		variant.Name = input.Name
	}
	if input.Description != "" {
		variant.Description = input.Description
	}
	variant.UpdatedAt = time.Now().UTC()

	if err := s.variantRepo.Update(ctx, variant); err != nil {
		return nil, fmt.Errorf("update variant: %w", err)
	}

	s.invalidateProduct(ctx, variant.ProductID)

	s.logger.InfoContext(ctx, "variant updated",
		slog.String("variant_id", variantID),
	)

	return variant, nil
}

// DeleteVariant soft-deletes a variant and hides its sale units from the
// storefront.
func (s *AdminCatalogService) DeleteVariant(ctx context.Context, variantID string) error {
	variant, err := s.variantRepo.GetByID(ctx, variantID)
	if err != nil {
		return fmt.Errorf("get variant for delete: %w", err)
	}

	if err := s.variantRepo.Deactivate(ctx, variantID); err != nil {
		return fmt.Errorf("deactivate variant: %w", err)
	}

	s.invalidateProduct(ctx, variant.ProductID)

	s.logger.InfoContext(ctx, "variant deactivated",
		slog.String("variant_id", variantID),
	)

	return nil
}

// --- Sale Unit Operations ---

// CreateSaleUnit creates a purchasable unit under a variant. When no SKU is
// given one is generated from the product and variant names.
func (s *AdminCatalogService) CreateSaleUnit(ctx context.Context, variantID string, input SaleUnitInput) (*domain.SaleUnit, error) {
	if input.Price.IsNegative() || input.Price.IsZero() {
		return nil, apperrors.InvalidInput("price must be positive")
	}
	if input.Stock < 0 {
		return nil, apperrors.InvalidInput("stock must not be negative")
	}

	variant, err := s.variantRepo.GetByID(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("get variant for sale unit: %w", err)
	}

	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		product, err := s.productRepo.GetByID(ctx, variant.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product for sku generation: %w", err)
		}
		sku, err = s.generateSKU(ctx, product.Name, variant.Name)
		if err != nil {
			return nil, err
		}
	} else {
		exists, err := s.saleUnitRepo.SKUExists(ctx, sku)
		if err != nil {
			return nil, fmt.Errorf("check sku: %w", err)
		}
		if exists {
			return nil, apperrors.AlreadyExists("sale unit", "sku", sku)
		}
	}

	now := time.Now().UTC()
	unit := &domain.SaleUnit{
		ID:          uuid.New().String(),
		VariantID:   variantID,
		SKU:         sku,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.saleUnitRepo.Create(ctx, unit); err != nil {
		return nil, fmt.Errorf("create sale unit: %w", err)
	}

	s.invalidateProduct(ctx, variant.ProductID)

	s.logger.InfoContext(ctx, "sale unit created",
		slog.String("sale_unit_id", unit.ID),
		slog.String("sku", unit.SKU),
	)

	return unit, nil
}

// UpdateSaleUnit updates a sale unit's description, price, or stock.
func (s *AdminCatalogService) UpdateSaleUnit(ctx context.Context, saleUnitID string, input UpdateSaleUnitInput) (*domain.SaleUnit, error) {
	unit, err := s.saleUnitRepo.GetByID(ctx, saleUnitID)
	if err != nil {
		return nil, fmt.Errorf("get sale unit for update: %w", err)
	}

	if input.Description != nil {
		unit.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() || input.Price.IsZero() {
			return nil, apperrors.InvalidInput("price must be positive")
		}
		unit.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperrors.InvalidInput("stock must not be negative")
		}
		unit.Stock = *input.Stock
	}
	unit.UpdatedAt = time.Now().UTC()

	if err := s.saleUnitRepo.Update(ctx, unit); err != nil {
		return nil, fmt.Errorf("update sale unit: %w", err)
	}

	if variant, err := s.variantRepo.GetByID(ctx, unit.VariantID); err == nil {
		s.invalidateProduct(ctx, variant.ProductID)
	}

	s.logger.InfoContext(ctx, "sale unit updated",
		slog.String("sale_unit_id", saleUnitID),
	)

	return unit, nil
}

// DeleteSaleUnit soft-deletes a sale unit.
func (s *AdminCatalogService) DeleteSaleUnit(ctx context.Context, saleUnitID string) error {
	unit, err := s.saleUnitRepo.GetByID(ctx, saleUnitID)
	if err != nil {
		return fmt.Errorf("get sale unit for delete: %w", err)
	}

	if err := s.saleUnitRepo.Deactivate(ctx, saleUnitID); err != nil {
		return fmt.Errorf("deactivate sale unit: %w", err)
	}

	if variant, err := s.variantRepo.GetByID(ctx, unit.VariantID); err == nil {
		s.invalidateProduct(ctx, variant.ProductID)
	}

	s.logger.InfoContext(ctx, "sale unit deactivated",
		slog.String("sale_unit_id", saleUnitID),
	)

	return nil
}

// --- Helpers ---

// generateSKU builds a SKU of the form CAMROJ-001 from the first letters of
// the product and variant names, bumping the numeric suffix until free.
func (s *AdminCatalogService) generateSKU(ctx context.Context, productName, variantName string) (string, error) {
	prefix := skuPrefix(productName) + skuPrefix(variantName)
	if prefix == "" {
		prefix = "SKU"
	}

	for n := 1; n <= maxSKUAttempts; n++ {
		candidate := fmt.Sprintf("%s-%03d", prefix, n)
		exists, err := s.saleUnitRepo.SKUExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check generated sku: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", apperrors.Conflict(fmt.Sprintf("no free sku with prefix %s", prefix))
}

// skuPrefix extracts up to three uppercase letters from the start of a name.
func skuPrefix(name string) string {
	var b strings.Builder
	for _, ch := range strings.ToUpper(strings.TrimSpace(name)) {
		if b.Len() >= 3 {
			break
		}
		if ch >= 'A' && ch <= 'Z' || unicode.IsDigit(ch) {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func (s *AdminCatalogService) invalidateProduct(ctx context.Context, productID string) {
	if err := s.cache.InvalidateProduct(ctx, productID); err != nil {
		s.logger.WarnContext(ctx, "product cache invalidation failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *AdminCatalogService) invalidateCategories(ctx context.Context) {
	if err := s.cache.InvalidateCategories(ctx); err != nil {
		s.logger.WarnContext(ctx, "category cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}
