package domain

import (
	"time"
)

// Address is a saved delivery address for a user. Sector drives the shipping
// rate at checkout.
type Address struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Label       string    `json:"label,omitempty"`
	AddressLine string    `json:"address_line"`
	City        string    `json:"city"`
	Sector      string    `json:"sector"`
	Phone       string    `json:"phone,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	IsDefault   bool      `json:"is_default"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
