package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/internal/event"
	"github.com/giovannicg/INMEDT/internal/repository"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

// CheckoutService turns a cart into a confirmed order.
type CheckoutService struct {
	cartRepo     repository.CartRepository
	orderRepo    repository.OrderRepository
	saleUnitRepo repository.SaleUnitRepository
	producer     *event.Producer
	logger       *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	saleUnitRepo repository.SaleUnitRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		cartRepo:     cartRepo,
		orderRepo:    orderRepo,
		saleUnitRepo: saleUnitRepo,
		producer:     producer,
		logger:       logger,
	}
}

// CheckoutInput holds the delivery details for placing an order.
type CheckoutInput struct {
	ShippingAddress string
	ContactPhone    string
	City            string
	Sector          string
	Notes           string
}

// Quote prices the user's current cart for the given sector without placing
// an order.
func (s *CheckoutService) Quote(ctx context.Context, userID, sector string) (*domain.PriceQuote, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	if cart.IsEmpty() {
		return nil, apperrors.EmptyCart()
	}

	quote := domain.Quote(cart.ComputeTotal(), sector)
	return &quote, nil
}

// Checkout places an order from the user's cart. Pricing is computed from the
// cart subtotal and the delivery sector; stock is decremented and the cart
// cleared atomically with the order insert.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, input CheckoutInput) (*domain.Order, error) {
	if input.ShippingAddress == "" {
		return nil, apperrors.InvalidInput("shipping address is required")
	}
	if input.City == "" {
		return nil, apperrors.InvalidInput("city is required")
	}
	if input.Sector == "" {
		return nil, apperrors.InvalidInput("sector is required")
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	if cart.IsEmpty() {
		return nil, apperrors.EmptyCart()
	}

	// Pre-check stock so the common failure reports the offending SKU
	// before anything is written. The transaction re-checks under lock.
	for _, line := range cart.Items {
		unit, err := s.saleUnitRepo.GetByID(ctx, line.SaleUnitID)
		if err != nil {
			return nil, fmt.Errorf("get sale unit for checkout: %w", err)
		}
		if !unit.IsActive || !unit.HasStock(line.Quantity) {
			return nil, apperrors.InsufficientStock(unit.SKU)
		}
	}

	items, err := s.cartRepo.ItemsForCheckout(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("load checkout items: %w", err)
	}

	quote := domain.Quote(cart.ComputeTotal(), input.Sector)

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New().String(),
		OrderNumber:     domain.NewOrderNumber(),
		UserID:          userID,
		Status:          domain.OrderStatusConfirmed,
		Subtotal:        quote.Subtotal,
		ShippingCost:    quote.ShippingCost,
		Tax:             quote.Tax,
		Total:           quote.Total,
		ShippingAddress: input.ShippingAddress,
		ContactPhone:    input.ContactPhone,
		City:            input.City,
		Sector:          input.Sector,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for i := range items {
		items[i].ID = uuid.New().String()
		items[i].OrderID = order.ID
	}
	order.Items = items

	if err := s.orderRepo.CreateFromCart(ctx, order, cart.ID); err != nil {
		return nil, fmt.Errorf("create order from cart: %w", err)
	}

	// Publish order event (non-blocking on failure).
	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
		slog.String("user_id", userID),
		slog.String("total", order.Total.StringFixed(2)),
	)

	return order, nil
}
