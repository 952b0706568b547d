package event

import "github.com/JonasHenriqueDev/order-mananger-crud/internal/model"

// OrderCreated fires exactly once after an order and its items have been
// persisted and stock has been decremented.
type OrderCreated struct {
	Order model.Order
	Items []model.OrderItem
}

// OrderStatusChanged fires exactly once per status transition, after the
// transition has been persisted.
type OrderStatusChanged struct {
	Order          model.Order
	PreviousStatus model.OrderStatus
	NewStatus      model.OrderStatus
}
