package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/giovannicg/INMEDT/internal/domain"
)

const (
	categoriesKey    = "catalog:categories"
	productDetailKey = "catalog:product:"
)

// CatalogCache is a read-through cache for the public catalog. A miss is
// reported as (nil, nil); only transport failures return errors.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a new Redis-backed catalog cache.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		ttl:    ttl,
	}
}

// GetCategories returns the cached active category list, or nil on a miss.
func (c *CatalogCache) GetCategories(ctx context.Context) ([]domain.Category, error) {
	data, err := c.client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get categories: %w", err)
	}

	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("unmarshal cached categories: %w", err)
	}

	return categories, nil
}

// SetCategories caches the active category list.
func (c *CatalogCache) SetCategories(ctx context.Context, categories []domain.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	if err := c.client.Set(ctx, categoriesKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set categories: %w", err)
	}

	return nil
}

// GetProductDetail returns the cached detail view of a product, or nil on a miss.
func (c *CatalogCache) GetProductDetail(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	data, err := c.client.Get(ctx, productDetailKey+productID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get product detail: %w", err)
	}

	var detail domain.ProductDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("unmarshal cached product detail: %w", err)
	}

	return &detail, nil
}

// SetProductDetail caches the detail view of a product.
func (c *CatalogCache) SetProductDetail(ctx context.Context, detail *domain.ProductDetail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal product detail: %w", err)
	}

	if err := c.client.Set(ctx, productDetailKey+detail.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set product detail: %w", err)
	}

	return nil
}

// InvalidateProduct drops the cached detail view of a product.
func (c *CatalogCache) InvalidateProduct(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, productDetailKey+productID).Err(); err != nil {
		return fmt.Errorf("redis del product detail: %w", err)
	}
	return nil
}

// InvalidateCategories drops the cached category list.
func (c *CatalogCache) InvalidateCategories(ctx context.Context) error {
	if err := c.client.Del(ctx, categoriesKey).Err(); err != nil {
		return fmt.Errorf("redis del categories: %w", err)
	}
	return nil
}
