package job

import (
	"context"
	"errors"
	"time"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/queue"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AdjustStockTask applies a signed stock delta to one product. It backs the
// deferred stock corrections that do not need to ride a request transaction.
// Exhausting its retries only logs; there is no order to annotate.
type AdjustStockTask struct {
	productID uuid.UUID
	delta     int
	products  service.ProductService
	backoff   []time.Duration
	logger    zerolog.Logger
}

// NewAdjustStockTask creates the task for one product adjustment.
func NewAdjustStockTask(productID uuid.UUID, delta int, deps Deps) *AdjustStockTask {
	return &AdjustStockTask{
		productID: productID,
		delta:     delta,
		products:  deps.Products,
		backoff:   deps.Policy.StockBackoff,
		logger: deps.Logger.With().
			Str("task", "adjust_stock").
			Str("product_id", productID.String()).
			Int("delta", delta).
			Logger(),
	}
}

func (t *AdjustStockTask) Name() string { return "adjust_stock" }

func (t *AdjustStockTask) OverlapKey() string { return "adjust_stock:" + t.productID.String() }

func (t *AdjustStockTask) MaxAttempts() int         { return taskMaxAttempts }
func (t *AdjustStockTask) Backoff() []time.Duration { return t.backoff }

func (t *AdjustStockTask) Run(ctx context.Context) error {
	stock, err := t.products.AdjustStock(ctx, t.productID, t.delta)
	if err != nil {
		// A vanished product will not reappear on retry.
		if errors.Is(err, model.ErrProductNotFound) {
			return err
		}
		return queue.Retryable(err)
	}

	t.logger.Info().Int("stock", stock).Msg("stock adjusted")
	return nil
}

// Failed logs the permanent failure. Stock drift is reconciled out of band.
func (t *AdjustStockTask) Failed(ctx context.Context, err error) {
	t.logger.Error().Err(err).Msg("permanent failure adjusting stock")
}
