package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Purchasable prices and stock live on the sale
// units underneath its variants.
type Product struct {
	ID             string    `json:"id"`
	CategoryID     string    `json:"category_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description,omitempty"`
	Brand          string    `json:"brand,omitempty"`
	MainImage      string    `json:"main_image,omitempty"`
	ThumbnailImage string    `json:"thumbnail_image,omitempty"`
	GalleryImages  []string  `json:"gallery_images,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProductVariant is a presentation of a product (e.g. color, size, format).
type ProductVariant struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SaleUnit is the purchasable SKU under a variant. It carries the price and
// the stock counter that checkout decrements.
type SaleUnit struct {
	ID          string          `json:"id"`
	VariantID   string          `json:"variant_id"`
	SKU         string          `json:"sku"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HasStock reports whether the sale unit can cover the requested quantity.
func (u *SaleUnit) HasStock(quantity int) bool {
	return u.Stock >= quantity
}

// ProductDetail is a product with its active variants and their sale units,
// as served by the public catalog detail endpoint.
type ProductDetail struct {
	Product
	Variants []VariantDetail `json:"variants"`
}

// VariantDetail is a variant with its sale units attached.
type VariantDetail struct {
	ProductVariant
	SaleUnits []SaleUnit `json:"sale_units"`
}
