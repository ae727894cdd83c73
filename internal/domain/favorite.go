package domain

import "time"

// Favorite marks a product saved by a user.
type Favorite struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteProduct is a favorite joined with product display data for listing.
type FavoriteProduct struct {
	ProductID      string    `json:"product_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Brand          string    `json:"brand,omitempty"`
	ThumbnailImage string    `json:"thumbnail_image,omitempty"`
	IsActive       bool      `json:"is_active"`
	AddedAt        time.Time `json:"added_at"`
}
