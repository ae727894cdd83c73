package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/internal/event"
	"github.com/giovannicg/INMEDT/internal/repository"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

// OrderService implements the business logic for viewing and managing orders.
type OrderService struct {
	orderRepo repository.OrderRepository
	producer  *event.Producer
	logger    *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		producer:  producer,
		logger:    logger,
	}
}

// UpdateShippingInfoInput holds the delivery fields an admin may rewrite on
// an order that has not shipped.
type UpdateShippingInfoInput struct {
	ShippingAddress string
	ContactPhone    string
	City            string
	Sector          string
	Notes           string
}

// ListMyOrders returns the user's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string, status *string, page, perPage int) ([]domain.Order, int, error) {
	if status != nil {
		normalized, ok := domain.ParseStatus(*status)
		if !ok {
			return nil, 0, apperrors.InvalidStatus(*status)
		}
		status = &normalized
	}

	orders, total, err := s.orderRepo.List(ctx, repository.OrderFilter{
		UserID:  &userID,
		Status:  status,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// GetMyOrder returns one of the user's orders with items. Another user's
// order reports forbidden.
func (s *OrderService) GetMyOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.UserID != userID {
		return nil, apperrors.Forbidden("order does not belong to the requesting user")
	}

	return order, nil
}

// CancelMyOrder cancels one of the user's orders while it is still cancellable.
func (s *OrderService) CancelMyOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.GetMyOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, order, domain.OrderStatusCancelled)
}

// --- Admin Operations ---

// ListOrders returns all orders matching the filter.
func (s *OrderService) ListOrders(ctx context.Context, userID, status *string, page, perPage int) ([]domain.Order, int, error) {
	if status != nil {
		normalized, ok := domain.ParseStatus(*status)
		if !ok {
			return nil, 0, apperrors.InvalidStatus(*status)
		}
		status = &normalized
	}

	orders, total, err := s.orderRepo.List(ctx, repository.OrderFilter{
		UserID:  userID,
		Status:  status,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// GetOrder returns any order with items.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// UpdateStatus moves an order to a new status. The target is parsed
// case-insensitively and must be reachable from the current status.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, newStatus string) (*domain.Order, error) {
	normalized, ok := domain.ParseStatus(newStatus)
	if !ok {
		return nil, apperrors.InvalidStatus(newStatus)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for status update: %w", err)
	}

	return s.transition(ctx, order, normalized)
}

// UpdateShippingInfo rewrites the delivery details of an order that has not
// yet shipped.
func (s *OrderService) UpdateShippingInfo(ctx context.Context, orderID string, input UpdateShippingInfoInput) (*domain.Order, error) {
	if input.ShippingAddress == "" {
		return nil, apperrors.InvalidInput("shipping address is required")
	}
	if input.ContactPhone == "" {
		return nil, apperrors.InvalidInput("contact phone is required")
	}
	if input.City == "" {
		return nil, apperrors.InvalidInput("city is required")
	}
	if input.Sector == "" {
		return nil, apperrors.InvalidInput("sector is required")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for shipping update: %w", err)
	}

	switch order.Status {
	case domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCancelled:
		return nil, apperrors.Conflict(fmt.Sprintf("order %s can no longer change delivery details", order.OrderNumber))
	}

	if err := s.orderRepo.UpdateShippingInfo(ctx, orderID,
		input.ShippingAddress, input.ContactPhone, input.City, input.Sector, input.Notes,
	); err != nil {
		return nil, fmt.Errorf("update shipping info: %w", err)
	}

	s.logger.InfoContext(ctx, "order shipping info updated",
		slog.String("order_id", orderID),
	)

	return s.orderRepo.GetByID(ctx, orderID)
}

// transition applies a validated status change and publishes the event.
func (s *OrderService) transition(ctx context.Context, order *domain.Order, newStatus string) (*domain.Order, error) {
	if !order.CanTransitionTo(newStatus) {
		return nil, apperrors.InvalidStatus(fmt.Sprintf("%s -> %s", order.Status, newStatus))
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, newStatus); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := s.producer.PublishOrderStatusChanged(ctx, order.ID, order.OrderNumber, order.Status, newStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status-changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status changed",
		slog.String("order_id", order.ID),
		slog.String("old_status", order.Status),
		slog.String("new_status", newStatus),
	)

	order.Status = newStatus
	return order, nil
}
