package repository

import (
	"context"
	"time"

	"github.com/giovannicg/INMEDT/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByGoogleID retrieves a user by their Google account identifier.
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// List returns a paginated list of users with the total count.
	List(ctx context.Context, page, perPage int) ([]domain.User, int, error)

	// SetActive flips the active flag on a user account.
	SetActive(ctx context.Context, id string, active bool) error
}

// RefreshTokenRepository defines the interface for refresh token persistence operations.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// GetByHash retrieves a refresh token record by its hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke revokes a specific refresh token by its hash.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeByUserID revokes all refresh tokens for the given user.
	RevokeByUserID(ctx context.Context, userID string) error
}

// AddressRepository defines the interface for address persistence operations.
type AddressRepository interface {
	// Create inserts a new address into the store.
	Create(ctx context.Context, address *domain.Address) error

	// GetByID retrieves an address by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Address, error)

	// ListByUserID returns all active addresses for the given user.
	ListByUserID(ctx context.Context, userID string) ([]domain.Address, error)

	// Update modifies an existing address in the store.
	Update(ctx context.Context, address *domain.Address) error

	// Deactivate soft-deletes an address.
	Deactivate(ctx context.Context, id string) error

	// SetDefault marks the specified address as the default for the user,
	// unsetting any previous default in the same transaction.
	SetDefault(ctx context.Context, userID, addressID string) error
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	// Create inserts a new category into the store.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// GetByName retrieves a category by its exact name.
	GetByName(ctx context.Context, name string) (*domain.Category, error)

	// ListActive returns all active categories ordered by name.
	ListActive(ctx context.Context) ([]domain.Category, error)

	// List returns all categories ordered by name, including inactive ones.
	List(ctx context.Context) ([]domain.Category, error)

	// Update modifies an existing category in the store.
	Update(ctx context.Context, category *domain.Category) error

	// Deactivate soft-deletes a category.
	Deactivate(ctx context.Context, id string) error
}

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Search     string
	CategoryID *string
	ActiveOnly bool
	Page       int
	PerPage    int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetByName retrieves a product by its exact name.
	GetByName(ctx context.Context, name string) (*domain.Product, error)

	// GetDetail retrieves a product with its active variants and sale units.
	GetDetail(ctx context.Context, id string) (*domain.ProductDetail, error)

	// List returns products matching the given filter with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Deactivate soft-deletes a product.
	Deactivate(ctx context.Context, id string) error

	// UpdateImages sets the main, thumbnail, and gallery image paths.
	UpdateImages(ctx context.Context, id, mainImage, thumbnailImage string, gallery []string) error
}

// VariantRepository defines the interface for product variant persistence operations.
type VariantRepository interface {
	// Create inserts a new variant into the store.
	Create(ctx context.Context, variant *domain.ProductVariant) error

	// GetByID retrieves a variant by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.ProductVariant, error)

	// GetByProductAndName retrieves a variant by its product and exact name.
	GetByProductAndName(ctx context.Context, productID, name string) (*domain.ProductVariant, error)

	// ListByProductID returns all variants of a product.
	ListByProductID(ctx context.Context, productID string) ([]domain.ProductVariant, error)

	// Update modifies an existing variant in the store.
	Update(ctx context.Context, variant *domain.ProductVariant) error

	// Deactivate soft-deletes a variant.
	Deactivate(ctx context.Context, id string) error
}

// SaleUnitRepository defines the interface for sale unit persistence operations.
type SaleUnitRepository interface {
	// Create inserts a new sale unit into the store.
	Create(ctx context.Context, unit *domain.SaleUnit) error

	// GetByID retrieves a sale unit by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.SaleUnit, error)

	// GetBySKU retrieves a sale unit by its SKU.
	GetBySKU(ctx context.Context, sku string) (*domain.SaleUnit, error)

	// ListByVariantID returns all sale units of a variant.
	ListByVariantID(ctx context.Context, variantID string) ([]domain.SaleUnit, error)

	// Update modifies an existing sale unit in the store.
	Update(ctx context.Context, unit *domain.SaleUnit) error

	// Deactivate soft-deletes a sale unit.
	Deactivate(ctx context.Context, id string) error

	// SKUExists reports whether a sale unit with the given SKU exists.
	SKUExists(ctx context.Context, sku string) (bool, error)
}

// FavoriteRepository defines the interface for favorite persistence operations.
type FavoriteRepository interface {
	// Add inserts a product into the user's favorites.
	Add(ctx context.Context, userID, productID string) error

	// Remove deletes a product from the user's favorites.
	Remove(ctx context.Context, userID, productID string) error

	// List returns the user's favorites joined with product display data.
	List(ctx context.Context, userID string) ([]domain.FavoriteProduct, error)

	// Exists checks whether a product is in the user's favorites.
	Exists(ctx context.Context, userID, productID string) (bool, error)
}

// CartRepository defines the interface for cart persistence operations.
// Mutations recompute the cart total inside the same transaction.
type CartRepository interface {
	// GetOrCreate returns the user's cart with items, creating it when absent.
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)

	// AddItem inserts a cart line, or increases the quantity of an existing
	// line for the same sale unit.
	AddItem(ctx context.Context, cartID string, item *domain.CartItem) error

	// UpdateItemQuantity sets the quantity of a cart line and refreshes its subtotal.
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error

	// RemoveItem deletes a cart line.
	RemoveItem(ctx context.Context, cartID, itemID string) error

	// Clear removes all lines and zeroes the cart total.
	Clear(ctx context.Context, cartID string) error

	// ItemsForCheckout returns the cart lines joined with catalog display data
	// (SKU, unit description, variant and product names, brand) in one query,
	// shaped as order items ready to freeze.
	ItemsForCheckout(ctx context.Context, cartID string) ([]domain.OrderItem, error)
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  *string
	Status  *string
	Page    int
	PerPage int
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// CreateFromCart inserts the order and its items, conditionally decrements
	// stock per line, and clears the cart, all in a single transaction. A line
	// whose sale unit lacks stock fails the whole transaction with
	// ErrInsufficientStock.
	CreateFromCart(ctx context.Context, order *domain.Order, cartID string) error

	// GetByID retrieves an order by its unique identifier, including items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the given filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus changes the status of an order.
	UpdateStatus(ctx context.Context, id string, status string) error

	// UpdateShippingInfo rewrites the delivery fields of an order.
	UpdateShippingInfo(ctx context.Context, id, address, phone, city, sector, notes string) error
}
