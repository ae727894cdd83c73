package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/giovannicg/INMEDT/internal/domain"
	pkgkafka "github.com/giovannicg/INMEDT/pkg/kafka"
)

// Kafka topics for storefront domain events.
var (
	TopicOrderCreated       = pkgkafka.Topic("order", "created")
	TopicOrderStatusChanged = pkgkafka.Topic("order", "status-changed")
	TopicUserRegistered     = pkgkafka.Topic("user", "registered")
)

// Aggregate type constants.
const (
	AggregateTypeOrder = "order"
	AggregateTypeUser  = "user"
)

// Source identifier for events originating from this API.
const SourceAPI = "inmedt-api"

// OrderCreatedData is the payload for an order.created event (full order snapshot).
type OrderCreatedData struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          string          `json:"user_id"`
	Status          string          `json:"status"`
	Items           []OrderItemData `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	City            string          `json:"city"`
	Sector          string          `json:"sector"`
	ShippingAddress string          `json:"shipping_address"`
}

// OrderItemData is the event payload for an order line.
type OrderItemData struct {
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// OrderStatusChangedData is the payload for an order.status-changed event.
type OrderStatusChangedData struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
}

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Via       string `json:"via"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			SKU:         item.SKU,
			ProductName: item.ProductName,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	data := OrderCreatedData{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		UserID:          order.UserID,
		Status:          order.Status,
		Items:           items,
		Subtotal:        order.Subtotal,
		ShippingCost:    order.ShippingCost,
		Tax:             order.Tax,
		Total:           order.Total,
		City:            order.City,
		Sector:          order.Sector,
		ShippingAddress: order.ShippingAddress,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status-changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID, orderNumber, oldStatus, newStatus string) error {
	data := OrderStatusChangedData{
		OrderID:     orderID,
		OrderNumber: orderNumber,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, orderID, AggregateTypeOrder, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create order.status-changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status-changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status-changed event",
		slog.String("order_id", orderID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return nil
}

// PublishUserRegistered publishes a user.registered event. via is either
// "password" or "google".
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User, via string) error {
	data := UserRegisteredData{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		Via:       via,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
	)

	return nil
}
