package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Status machine tests
// ============================================================================

func TestParseStatus_CaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"pending", OrderStatusPending},
		{"CONFIRMED", OrderStatusConfirmed},
		{"Processing", OrderStatusProcessing},
		{" shipped ", OrderStatusShipped},
		{"DELIVERED", OrderStatusDelivered},
		{"Cancelled", OrderStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseStatus(tt.input)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatus_Unrecognized(t *testing.T) {
	for _, s := range []string{"", "teleported", "canceled-by-user", "refunded"} {
		_, ok := ParseStatus(s)
		assert.False(t, ok, "status %q should not parse", s)
	}
}

func TestCanTransitionTo_HappyPath(t *testing.T) {
	chain := []string{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
	}
	for i := 0; i < len(chain)-1; i++ {
		o := &Order{Status: chain[i]}
		assert.True(t, o.CanTransitionTo(chain[i+1]), "%s -> %s", chain[i], chain[i+1])
	}
}

func TestCanTransitionTo_NoSkippingSteps(t *testing.T) {
	o := &Order{Status: OrderStatusPending}
	assert.False(t, o.CanTransitionTo(OrderStatusProcessing))
	assert.False(t, o.CanTransitionTo(OrderStatusShipped))
	assert.False(t, o.CanTransitionTo(OrderStatusDelivered))
}

func TestCanTransitionTo_NoGoingBack(t *testing.T) {
	o := &Order{Status: OrderStatusShipped}
	assert.False(t, o.CanTransitionTo(OrderStatusPending))
	assert.False(t, o.CanTransitionTo(OrderStatusConfirmed))
	assert.False(t, o.CanTransitionTo(OrderStatusProcessing))
}

func TestCanTransitionTo_CancellableFromNonTerminal(t *testing.T) {
	for _, status := range []string{OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped} {
		o := &Order{Status: status}
		assert.True(t, o.CanTransitionTo(OrderStatusCancelled), "from %s", status)
	}
}

func TestCanTransitionTo_TerminalStatesAreFinal(t *testing.T) {
	for _, status := range []string{OrderStatusDelivered, OrderStatusCancelled} {
		o := &Order{Status: status}
		for _, target := range ValidStatuses() {
			assert.False(t, o.CanTransitionTo(target), "%s -> %s", status, target)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(OrderStatusDelivered))
	assert.True(t, IsTerminalStatus(OrderStatusCancelled))
	assert.False(t, IsTerminalStatus(OrderStatusPending))
	assert.False(t, IsTerminalStatus(OrderStatusShipped))
}

// ============================================================================
// Order number tests
// ============================================================================

func TestNewOrderNumber_Format(t *testing.T) {
	num := NewOrderNumber()

	parts := strings.Split(num, "-")
	assert.Len(t, parts, 3)
	assert.Equal(t, "ORD", parts[0])
	assert.Len(t, parts[1], 6)
	assert.Len(t, parts[2], 8)
	assert.Equal(t, strings.ToUpper(parts[2]), parts[2])
}

func TestNewOrderNumber_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		num := NewOrderNumber()
		_, dup := seen[num]
		assert.False(t, dup, "duplicate order number %s", num)
		seen[num] = struct{}{}
	}
}

// ============================================================================
// OrderItem tests
// ============================================================================

func TestOrderItem_LineTotal(t *testing.T) {
	item := &OrderItem{UnitPrice: decimal.RequireFromString("4.50"), Quantity: 3}
	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("13.50")))
}
