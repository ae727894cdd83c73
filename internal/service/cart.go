package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/internal/repository"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

// maxCartLineQuantity caps a single cart line.
const maxCartLineQuantity = 99

// CartService implements the business logic for the shopping cart.
type CartService struct {
	cartRepo     repository.CartRepository
	saleUnitRepo repository.SaleUnitRepository
	logger       *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	saleUnitRepo repository.SaleUnitRepository,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		cartRepo:     cartRepo,
		saleUnitRepo: saleUnitRepo,
		logger:       logger,
	}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddItem adds a sale unit to the user's cart. The unit price is frozen at
// add time. When the sale unit is already in the cart, the quantities merge
// and the combined amount must still fit in stock.
func (s *CartService) AddItem(ctx context.Context, userID, saleUnitID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}
	if quantity > maxCartLineQuantity {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", maxCartLineQuantity))
	}

	unit, err := s.saleUnitRepo.GetByID(ctx, saleUnitID)
	if err != nil {
		return nil, fmt.Errorf("get sale unit: %w", err)
	}
	if !unit.IsActive {
		return nil, apperrors.NotFound("sale unit", saleUnitID)
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	requested := quantity
	if idx := cart.FindItemIndex(saleUnitID); idx >= 0 {
		requested += cart.Items[idx].Quantity
	}
	if requested > maxCartLineQuantity {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", maxCartLineQuantity))
	}
	if !unit.HasStock(requested) {
		return nil, apperrors.InsufficientStock(unit.SKU)
	}

	item := &domain.CartItem{
		ID:         uuid.New().String(),
		CartID:     cart.ID,
		SaleUnitID: saleUnitID,
		Quantity:   quantity,
		UnitPrice:  unit.Price,
		Subtotal:   unit.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}

	if err := s.cartRepo.AddItem(ctx, cart.ID, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	s.logger.InfoContext(ctx, "cart item added",
		slog.String("user_id", userID),
		slog.String("sku", unit.SKU),
		slog.Int("quantity", quantity),
	)

	return s.GetCart(ctx, userID)
}

// UpdateItemQuantity sets the quantity of a cart line. Zero removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if quantity > maxCartLineQuantity {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", maxCartLineQuantity))
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var line *domain.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			line = &cart.Items[i]
			break
		}
	}
	if line == nil {
		return nil, apperrors.NotFound("cart item", itemID)
	}

	if quantity == 0 {
		if err := s.cartRepo.RemoveItem(ctx, cart.ID, itemID); err != nil {
			return nil, fmt.Errorf("remove cart item: %w", err)
		}
		return s.GetCart(ctx, userID)
	}

	unit, err := s.saleUnitRepo.GetByID(ctx, line.SaleUnitID)
	if err != nil {
		return nil, fmt.Errorf("get sale unit: %w", err)
	}
	if !unit.HasStock(quantity) {
		return nil, apperrors.InsufficientStock(unit.SKU)
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		return nil, fmt.Errorf("update cart item quantity: %w", err)
	}

	return s.GetCart(ctx, userID)
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}

	return s.GetCart(ctx, userID)
}

// ClearCart removes all lines from the user's cart.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}

	if err := s.cartRepo.Clear(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("user_id", userID),
	)

	return nil
}
