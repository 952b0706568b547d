package job

import (
	"context"
	"fmt"
	"time"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/queue"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CompleteOrderTask advances a processing order to completed after the
// configured fulfilment delay. Infrastructure errors are retryable; the task
// only gives up once the backoff schedule is exhausted.
type CompleteOrderTask struct {
	orderID uuid.UUID
	orders  service.OrderService
	backoff []time.Duration
	logger  zerolog.Logger
}

// NewCompleteOrderTask creates the task for one order.
func NewCompleteOrderTask(orderID uuid.UUID, deps Deps) *CompleteOrderTask {
	return &CompleteOrderTask{
		orderID: orderID,
		orders:  deps.Orders,
		backoff: deps.Policy.CompleteBackoff,
		logger:  deps.Logger.With().Str("task", "complete_order").Str("order_id", orderID.String()).Logger(),
	}
}

func (t *CompleteOrderTask) Name() string { return "complete_order" }

func (t *CompleteOrderTask) OverlapKey() string { return "complete_order:" + t.orderID.String() }

func (t *CompleteOrderTask) MaxAttempts() int         { return taskMaxAttempts }
func (t *CompleteOrderTask) Backoff() []time.Duration { return t.backoff }

func (t *CompleteOrderTask) Run(ctx context.Context) error {
	t.logger.Info().Msg("completing order")

	order, err := t.orders.GetByID(ctx, t.orderID)
	if err != nil {
		return queue.Retryable(err)
	}
	if order == nil {
		t.logger.Warn().Msg("order no longer exists, skipping")
		return nil
	}

	// The order may have been cancelled during the fulfilment window.
	if order.Status != model.StatusProcessing {
		t.logger.Warn().Str("status", string(order.Status)).Msg("order is not processing, skipping")
		return nil
	}

	changed, err := t.orders.MarkAsCompleted(ctx, t.orderID)
	if err != nil {
		return queue.Retryable(err)
	}
	if !changed {
		t.logger.Warn().Msg("order moved past processing concurrently, skipping")
		return nil
	}

	t.logger.Info().Msg("order completed")
	return nil
}

// Failed records the terminal failure on the order's audit trail.
func (t *CompleteOrderTask) Failed(ctx context.Context, err error) {
	t.logger.Error().Err(err).Msg("permanent failure completing order")

	note := fmt.Sprintf("[ERROR] Automatic completion failed: %v", err)
	if noteErr := t.orders.AppendFailureNote(ctx, t.orderID, note); noteErr != nil {
		t.logger.Error().Err(noteErr).Msg("failed to record failure note")
	}
}
