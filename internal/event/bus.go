// Package event provides the in-process publish/subscribe mechanism that
// connects order lifecycle transitions to job dispatch. Delivery is
// synchronous at emission time; listeners are expected to do nothing beyond
// enqueuing work.
package event

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// OrderCreatedListener handles an OrderCreated event.
type OrderCreatedListener func(ctx context.Context, e OrderCreated)

// OrderStatusChangedListener handles an OrderStatusChanged event.
type OrderStatusChangedListener func(ctx context.Context, e OrderStatusChanged)

// Bus is a process-wide typed event bus. Multiple listeners may subscribe to
// the same event type; there is no ordering guarantee between them. A
// panicking listener is recovered and logged so emitters never crash.
type Bus struct {
	mu            sync.RWMutex
	created       []OrderCreatedListener
	statusChanged []OrderStatusChangedListener
	logger        zerolog.Logger
}

// NewBus creates an empty event bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		logger: logger.With().Str("component", "event_bus").Logger(),
	}
}

// SubscribeOrderCreated registers a listener for OrderCreated events.
func (b *Bus) SubscribeOrderCreated(fn OrderCreatedListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, fn)
}

// SubscribeOrderStatusChanged registers a listener for OrderStatusChanged events.
func (b *Bus) SubscribeOrderStatusChanged(fn OrderStatusChangedListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusChanged = append(b.statusChanged, fn)
}

// PublishOrderCreated delivers the event to every subscribed listener before
// returning.
func (b *Bus) PublishOrderCreated(ctx context.Context, e OrderCreated) {
	b.mu.RLock()
	listeners := b.created
	b.mu.RUnlock()

	b.logger.Debug().
		Str("order_id", e.Order.ID.String()).
		Int("listeners", len(listeners)).
		Msg("publishing OrderCreated")

	for _, fn := range listeners {
		b.deliver(func() { fn(ctx, e) })
	}
}

// PublishOrderStatusChanged delivers the event to every subscribed listener
// before returning.
func (b *Bus) PublishOrderStatusChanged(ctx context.Context, e OrderStatusChanged) {
	b.mu.RLock()
	listeners := b.statusChanged
	b.mu.RUnlock()

	b.logger.Debug().
		Str("order_id", e.Order.ID.String()).
		Str("previous", string(e.PreviousStatus)).
		Str("new", string(e.NewStatus)).
		Int("listeners", len(listeners)).
		Msg("publishing OrderStatusChanged")

	for _, fn := range listeners {
		b.deliver(func() { fn(ctx, e) })
	}
}

func (b *Bus) deliver(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error().Interface("panic", rec).Msg("event listener panicked")
		}
	}()
	fn()
}
