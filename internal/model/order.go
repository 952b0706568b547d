package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a customer order and its monetary breakdown.
// All money fields are fixed-point decimals with two fractional digits.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderNumber string          `json:"orderNumber" db:"order_number"`
	UserID      uuid.UUID       `json:"userId" db:"user_id"`
	Status      OrderStatus     `json:"status" db:"status"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax         decimal.Decimal `json:"tax" db:"tax"`
	Discount    decimal.Decimal `json:"discount" db:"discount"`
	Total       decimal.Decimal `json:"total" db:"total"`
	Notes       string          `json:"notes" db:"notes"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty" db:"processed_at"`
	CompletedAt *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
	CancelledAt *time.Time      `json:"cancelledAt,omitempty" db:"cancelled_at"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
	DeletedAt   *time.Time      `json:"-" db:"deleted_at"`
}

// OrderItem is a line item owned by exactly one order. It carries a snapshot
// of the product at the time the order was placed; Subtotal is always
// recomputed from price and quantity, never trusted from input.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   uuid.UUID       `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	ProductSKU  string          `json:"productSku" db:"product_sku"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// NewOrderItem builds a line item snapshotting the given product.
// The item subtotal is price multiplied by quantity.
func NewOrderItem(orderID uuid.UUID, product Product, quantity int) OrderItem {
	return OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   product.ID,
		ProductName: product.Name,
		ProductSKU:  product.SKU,
		Price:       product.Price,
		Quantity:    quantity,
		Subtotal:    product.Price.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}
}

// RecomputeTotals recalculates the order's subtotal and total from its items.
// Afterwards total == subtotal + tax - discount holds exactly.
func (o *Order) RecomputeTotals(items []OrderItem) {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal)
	}
	o.Subtotal = subtotal.Round(2)
	o.Total = o.Subtotal.Add(o.Tax).Sub(o.Discount).Round(2)
}

// CanBeCancelled reports whether the order may still be cancelled.
func (o *Order) CanBeCancelled() bool {
	return o.Status.CanBeCancelled()
}

// OrderRequest is the payload for creating an order. Item quantities are
// validated against product stock before any write happens.
type OrderRequest struct {
	UserID   uuid.UUID          `json:"userId"`
	Items    []OrderItemRequest `json:"items"`
	Tax      decimal.Decimal    `json:"tax"`
	Discount decimal.Decimal    `json:"discount"`
	Notes    string             `json:"notes"`
}

// OrderItemRequest is a single requested line item.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// OrderUpdateRequest is the payload for PATCH updates. A nil field is left
// untouched.
type OrderUpdateRequest struct {
	Status   *OrderStatus     `json:"status,omitempty"`
	Tax      *decimal.Decimal `json:"tax,omitempty"`
	Discount *decimal.Decimal `json:"discount,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

// OrderResponse is the serialized form of an order exposed to callers,
// including the derived presentation strings for its status.
type OrderResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	UserID      uuid.UUID       `json:"userId"`
	Status      OrderStatus     `json:"status"`
	StatusLabel string          `json:"statusLabel"`
	StatusColor string          `json:"statusColor"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	Notes       string          `json:"notes,omitempty"`
	Items       []OrderItem     `json:"items"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	CancelledAt *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewOrderResponse builds the response payload for an order and its items.
func NewOrderResponse(order Order, items []OrderItem) *OrderResponse {
	if items == nil {
		items = []OrderItem{}
	}
	return &OrderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		StatusLabel: order.Status.Label(),
		StatusColor: order.Status.Color(),
		Subtotal:    order.Subtotal,
		Tax:         order.Tax,
		Discount:    order.Discount,
		Total:       order.Total,
		Notes:       order.Notes,
		Items:       items,
		ProcessedAt: order.ProcessedAt,
		CompletedAt: order.CompletedAt,
		CancelledAt: order.CancelledAt,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

// OrderListFilter narrows order listings.
type OrderListFilter struct {
	Status   *OrderStatus
	UserID   *uuid.UUID
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
