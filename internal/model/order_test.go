package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"Pending to processing", StatusPending, StatusProcessing, true},
		{"Pending to cancelled", StatusPending, StatusCancelled, true},
		{"Pending to completed", StatusPending, StatusCompleted, false},
		{"Processing to completed", StatusProcessing, StatusCompleted, true},
		{"Processing to cancelled", StatusProcessing, StatusCancelled, true},
		{"Processing to pending", StatusProcessing, StatusPending, false},
		{"Completed is terminal", StatusCompleted, StatusCancelled, false},
		{"Cancelled is terminal", StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_CanBeCancelled(t *testing.T) {
	assert.True(t, StatusPending.CanBeCancelled())
	assert.True(t, StatusProcessing.CanBeCancelled())
	assert.False(t, StatusCompleted.CanBeCancelled())
	assert.False(t, StatusCancelled.CanBeCancelled())
}

func TestOrderStatus_Presentation(t *testing.T) {
	tests := []struct {
		status OrderStatus
		label  string
		color  string
	}{
		{StatusPending, "Pending", "yellow"},
		{StatusProcessing, "Processing", "blue"},
		{StatusCompleted, "Completed", "green"},
		{StatusCancelled, "Cancelled", "red"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.label, tt.status.Label())
		assert.Equal(t, tt.color, tt.status.Color())
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, OrderStatus("shipped").Valid())
}

func TestNewOrderItem_ComputesSubtotal(t *testing.T) {
	product := Product{
		ID:    uuid.New(),
		Name:  "Widget",
		SKU:   "PROD-ABC123",
		Price: decimal.RequireFromString("19.99"),
	}

	item := NewOrderItem(uuid.New(), product, 3)

	assert.Equal(t, product.ID, item.ProductID)
	assert.Equal(t, "Widget", item.ProductName)
	assert.Equal(t, "PROD-ABC123", item.ProductSKU)
	assert.True(t, item.Subtotal.Equal(decimal.RequireFromString("59.97")),
		"expected 59.97, got %s", item.Subtotal)
}

func TestOrder_RecomputeTotals(t *testing.T) {
	orderID := uuid.New()
	items := []OrderItem{
		NewOrderItem(orderID, Product{ID: uuid.New(), Price: decimal.NewFromInt(100)}, 2),
		NewOrderItem(orderID, Product{ID: uuid.New(), Price: decimal.NewFromInt(50)}, 1),
	}

	order := Order{
		ID:       orderID,
		Tax:      decimal.NewFromInt(10),
		Discount: decimal.NewFromInt(5),
	}
	order.RecomputeTotals(items)

	require.True(t, order.Subtotal.Equal(decimal.NewFromInt(250)), "subtotal = %s", order.Subtotal)
	require.True(t, order.Total.Equal(decimal.NewFromInt(255)), "total = %s", order.Total)

	// total == subtotal + tax - discount must hold after every recompute.
	expected := order.Subtotal.Add(order.Tax).Sub(order.Discount)
	assert.True(t, order.Total.Equal(expected))

	// subtotal == sum of item subtotals.
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal)
	}
	assert.True(t, order.Subtotal.Equal(sum))
}

func TestOrder_RecomputeTotals_NoItems(t *testing.T) {
	order := Order{Tax: decimal.NewFromInt(2), Discount: decimal.NewFromInt(1)}
	order.RecomputeTotals(nil)

	assert.True(t, order.Subtotal.IsZero())
	assert.True(t, order.Total.Equal(decimal.NewFromInt(1)))
}

func TestNewOrderResponse_DerivedFields(t *testing.T) {
	order := Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-A1B2C3D4",
		Status:      StatusProcessing,
	}

	resp := NewOrderResponse(order, nil)

	assert.Equal(t, "Processing", resp.StatusLabel)
	assert.Equal(t, "blue", resp.StatusColor)
	assert.NotNil(t, resp.Items)
}
