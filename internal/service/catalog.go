package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/internal/repository"
)

// CatalogCache is the read-through cache used by the public catalog paths.
// A miss returns (nil, nil).
type CatalogCache interface {
	GetCategories(ctx context.Context) ([]domain.Category, error)
	SetCategories(ctx context.Context, categories []domain.Category) error
	GetProductDetail(ctx context.Context, productID string) (*domain.ProductDetail, error)
	SetProductDetail(ctx context.Context, detail *domain.ProductDetail) error
	InvalidateProduct(ctx context.Context, productID string) error
	InvalidateCategories(ctx context.Context) error
}

// CatalogService serves the public storefront read paths. Reads go through
// the cache; cache failures degrade to the database, never to an error.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        CatalogCache
	logger       *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache CatalogCache,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		logger:       logger,
	}
}

// ListCategories returns all active categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cached, err := s.cache.GetCategories(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "category cache read failed",
			slog.String("error", err.Error()),
		)
	}
	if cached != nil {
		return cached, nil
	}

	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}

	if err := s.cache.SetCategories(ctx, categories); err != nil {
		s.logger.WarnContext(ctx, "category cache write failed",
			slog.String("error", err.Error()),
		)
	}

	return categories, nil
}

// ListProducts returns active products matching the filter. Search and
// category-filtered lists change too often to cache usefully, so they always
// hit the database.
func (s *CatalogService) ListProducts(ctx context.Context, search string, categoryID *string, page, perPage int) ([]domain.Product, int, error) {
	filter := repository.ProductFilter{
		Search:     search,
		CategoryID: categoryID,
		ActiveOnly: true,
		Page:       page,
		PerPage:    perPage,
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// GetProduct returns the detail view of an active product with its variants
// and sale units.
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	cached, err := s.cache.GetProductDetail(ctx, productID)
	if err != nil {
		s.logger.WarnContext(ctx, "product cache read failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
	if cached != nil {
		return cached, nil
	}

	detail, err := s.productRepo.GetDetail(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product detail: %w", err)
	}

	if err := s.cache.SetProductDetail(ctx, detail); err != nil {
		s.logger.WarnContext(ctx, "product cache write failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	return detail, nil
}
