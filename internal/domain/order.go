package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status constants.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order represents a customer order with its frozen pricing breakdown.
type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          string          `json:"user_id"`
	Status          string          `json:"status"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress string          `json:"shipping_address"`
	ContactPhone    string          `json:"contact_phone"`
	City            string          `json:"city"`
	Sector          string          `json:"sector"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is a single order line. Display fields (SKU, descriptions, brand)
// are denormalized at checkout time so the order survives later catalog edits.
type OrderItem struct {
	ID              string          `json:"id"`
	OrderID         string          `json:"order_id"`
	SaleUnitID      string          `json:"sale_unit_id"`
	SKU             string          `json:"sku"`
	UnitDescription string          `json:"unit_description"`
	VariantName     string          `json:"variant_name"`
	ProductName     string          `json:"product_name"`
	Brand           string          `json:"brand,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// LineTotal computes quantity times unit price.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// ParseStatus normalizes a status string to its canonical lowercase form.
// Returns false when the status is not recognized.
func ParseStatus(status string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(status))
	for _, s := range ValidStatuses() {
		if s == normalized {
			return s, true
		}
	}
	return "", false
}

// IsValidStatus checks if a status string is valid (case-insensitive).
func IsValidStatus(status string) bool {
	_, ok := ParseStatus(status)
	return ok
}

// IsTerminalStatus reports whether a status admits no further transitions.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}

// AllowedTransitions defines which status transitions are valid. The fulfilment
// chain advances one step at a time; cancellation is reachable from every
// non-terminal state.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
		OrderStatusDelivered:  {},
		OrderStatusCancelled:  {},
	}
}

// CanTransitionTo checks if the order can transition to the target status.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// NewOrderNumber generates a human-readable order number of the form
// ORD-123456-1A2B3C4D: the last six digits of the current unix-milli clock
// plus the first eight hex characters of a fresh UUID.
func NewOrderNumber() string {
	millis := time.Now().UnixMilli()
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%06d-%s", millis%1000000, suffix)
}
