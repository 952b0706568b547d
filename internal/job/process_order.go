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

// ProcessOrderTask advances a pending order to processing. It is dispatched
// on OrderCreated with a short delay so the creating transaction settles
// before the first attempt.
//
// Only the defensive stock re-check is retryable; any other error fails the
// task on its first occurrence rather than exhausting the retry budget.
type ProcessOrderTask struct {
	orderID  uuid.UUID
	orders   service.OrderService
	products service.ProductService
	backoff  []time.Duration
	logger   zerolog.Logger
}

// NewProcessOrderTask creates the task for one order.
func NewProcessOrderTask(orderID uuid.UUID, deps Deps) *ProcessOrderTask {
	return &ProcessOrderTask{
		orderID:  orderID,
		orders:   deps.Orders,
		products: deps.Products,
		backoff:  deps.Policy.ProcessBackoff,
		logger:   deps.Logger.With().Str("task", "process_order").Str("order_id", orderID.String()).Logger(),
	}
}

func (t *ProcessOrderTask) Name() string { return "process_order" }

// OverlapKey serializes ProcessOrder executions per order so two workers can
// never double-process the same order.
func (t *ProcessOrderTask) OverlapKey() string { return "process_order:" + t.orderID.String() }

func (t *ProcessOrderTask) MaxAttempts() int         { return taskMaxAttempts }
func (t *ProcessOrderTask) Backoff() []time.Duration { return t.backoff }

func (t *ProcessOrderTask) Run(ctx context.Context) error {
	t.logger.Info().Msg("processing order")

	order, err := t.orders.GetByID(ctx, t.orderID)
	if err != nil {
		return err
	}
	if order == nil {
		t.logger.Warn().Msg("order no longer exists, skipping")
		return nil
	}

	// Guard against duplicate or late dispatch: a non-pending order is a
	// logged no-op, not an error.
	if order.Status != model.StatusPending {
		t.logger.Warn().Str("status", string(order.Status)).Msg("order is not pending, skipping")
		return nil
	}

	changed, err := t.orders.MarkAsProcessing(ctx, t.orderID)
	if err != nil {
		return err
	}
	if !changed {
		t.logger.Warn().Msg("order moved past pending concurrently, skipping")
		return nil
	}

	for _, item := range order.Items {
		product, err := t.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if product.Stock < 0 {
			return queue.Retryable(fmt.Errorf("insufficient stock for product %s", product.Name))
		}
	}

	t.logger.Info().Msg("order processed")
	return nil
}

// Failed records the terminal failure on the order's audit trail. The order's
// status is left untouched.
func (t *ProcessOrderTask) Failed(ctx context.Context, err error) {
	t.logger.Error().Err(err).Msg("permanent failure processing order")

	note := fmt.Sprintf("[ERROR] Automatic processing failed: %v", err)
	if noteErr := t.orders.AppendFailureNote(ctx, t.orderID, note); noteErr != nil {
		t.logger.Error().Err(noteErr).Msg("failed to record failure note")
	}
}
