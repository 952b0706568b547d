package event

import (
	"context"
	"testing"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestBus_PublishOrderCreated_AllListeners(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var first, second []uuid.UUID
	bus.SubscribeOrderCreated(func(_ context.Context, e OrderCreated) {
		first = append(first, e.Order.ID)
	})
	bus.SubscribeOrderCreated(func(_ context.Context, e OrderCreated) {
		second = append(second, e.Order.ID)
	})

	order := model.Order{ID: uuid.New()}
	bus.PublishOrderCreated(context.Background(), OrderCreated{Order: order})

	// Delivery is synchronous: both listeners ran before Publish returned.
	assert.Equal(t, []uuid.UUID{order.ID}, first)
	assert.Equal(t, []uuid.UUID{order.ID}, second)
}

func TestBus_PublishOrderStatusChanged_CarriesTransition(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var got OrderStatusChanged
	bus.SubscribeOrderStatusChanged(func(_ context.Context, e OrderStatusChanged) {
		got = e
	})

	order := model.Order{ID: uuid.New(), Status: model.StatusProcessing}
	bus.PublishOrderStatusChanged(context.Background(), OrderStatusChanged{
		Order:          order,
		PreviousStatus: model.StatusPending,
		NewStatus:      model.StatusProcessing,
	})

	assert.Equal(t, order.ID, got.Order.ID)
	assert.Equal(t, model.StatusPending, got.PreviousStatus)
	assert.Equal(t, model.StatusProcessing, got.NewStatus)
}

func TestBus_PublishWithoutListeners(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	assert.NotPanics(t, func() {
		bus.PublishOrderCreated(context.Background(), OrderCreated{})
		bus.PublishOrderStatusChanged(context.Background(), OrderStatusChanged{})
	})
}

func TestBus_PanickingListenerDoesNotStopOthers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var delivered bool
	bus.SubscribeOrderCreated(func(context.Context, OrderCreated) {
		panic("listener bug")
	})
	bus.SubscribeOrderCreated(func(context.Context, OrderCreated) {
		delivered = true
	})

	assert.NotPanics(t, func() {
		bus.PublishOrderCreated(context.Background(), OrderCreated{})
	})
	assert.True(t, delivered)
}
