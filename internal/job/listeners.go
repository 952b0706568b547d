package job

import (
	"context"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/event"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/queue"
)

// RegisterListeners wires the event bus to the dispatcher. Listeners only
// enqueue tasks; all state reads happen later when the task runs.
func RegisterListeners(bus *event.Bus, dispatcher *queue.Dispatcher, deps Deps) {
	bus.SubscribeOrderCreated(func(ctx context.Context, e event.OrderCreated) {
		dispatcher.Dispatch(NewProcessOrderTask(e.Order.ID, deps), deps.Policy.ProcessDelay)
	})

	bus.SubscribeOrderStatusChanged(func(ctx context.Context, e event.OrderStatusChanged) {
		if e.PreviousStatus == model.StatusPending && e.NewStatus == model.StatusProcessing {
			dispatcher.Dispatch(NewCompleteOrderTask(e.Order.ID, deps), deps.Policy.CompleteDelay)
		}
	})
}
