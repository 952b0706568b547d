package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product statuses.
const (
	ProductActive   = "active"
	ProductInactive = "inactive"
)

// Product represents a catalogue product. Stock is the only cross-order
// shared mutable field; it is adjusted exclusively through atomic
// read-modify-write statements at the storage layer and never goes below zero.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Slug        string          `json:"slug" db:"slug"`
	SKU         string          `json:"sku" db:"sku"`
	Description string          `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Status      string          `json:"status" db:"status"`
	IsFeatured  bool            `json:"isFeatured" db:"is_featured"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// IsActive reports whether the product can be ordered.
func (p *Product) IsActive() bool {
	return p.Status == ProductActive
}
