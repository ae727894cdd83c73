package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is a user's shopping cart. Each user has at most one.
type Cart struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CartItem is a single cart line. UnitPrice is frozen when the item is added;
// later catalog price edits do not move it.
type CartItem struct {
	ID          string          `json:"id"`
	CartID      string          `json:"cart_id"`
	SaleUnitID  string          `json:"sale_unit_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ComputeTotal sums the item subtotals.
func (c *Cart) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the cart line for the given sale unit,
// or -1 when the cart has no such line.
func (c *Cart) FindItemIndex(saleUnitID string) int {
	for i := range c.Items {
		if c.Items[i].SaleUnitID == saleUnitID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
