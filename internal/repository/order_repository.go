package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, order_number, user_id, status, subtotal, tax, discount, total, notes,
	processed_at, completed_at, cancelled_at, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, order_number, user_id, status, subtotal, tax, discount, total, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.OrderNumber, order.UserID, string(order.Status),
		order.Subtotal, order.Tax, order.Discount, order.Total, order.Notes,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("order_number", order.OrderNumber).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_sku, price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.ProductSKU, item.Price, item.Quantity, item.Subtotal,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().Int("count", len(items)).Msg("order items created")

	return nil
}

// GetByID retrieves an order by its ID along with its items. Soft-deleted
// orders are not returned.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	orderQuery := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1 AND deleted_at IS NULL`, orderColumns)

	order, err := r.scanOrder(r.pool.QueryRow(ctx, orderQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, product_name, product_sku, price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order items")
		return nil, nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.ProductSKU, &item.Price, &item.Quantity, &item.Subtotal)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, items, nil
}

// List retrieves orders matching the filter, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderListFilter) ([]model.Order, error) {
	var (
		conditions = []string{"deleted_at IS NULL"}
		args       []any
	)

	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		conditions = append(conditions, "status = "+addArg(string(*filter.Status)))
	}
	if filter.UserID != nil {
		conditions = append(conditions, "user_id = "+addArg(*filter.UserID))
	}
	if filter.FromDate != nil {
		conditions = append(conditions, "created_at >= "+addArg(*filter.FromDate))
	}
	if filter.ToDate != nil {
		conditions = append(conditions, "created_at <= "+addArg(*filter.ToDate))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT %s OFFSET %s`,
		orderColumns, strings.Join(conditions, " AND "), addArg(limit), addArg(offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// TransitionStatus moves the order to the target status with a compare-and-set
// on the current status, so a late or duplicate transition touches nothing.
// The timestamp column matching the transition is set exactly once.
func (r *orderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus) (*model.Order, bool, error) {
	return r.transitionStatus(ctx, r.pool, id, from, to)
}

// TransitionStatusTx is TransitionStatus executed within the provided transaction.
func (r *orderRepository) TransitionStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus) (*model.Order, bool, error) {
	return r.transitionStatus(ctx, tx, id, from, to)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *orderRepository) transitionStatus(ctx context.Context, q queryRower, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus) (*model.Order, bool, error) {
	query := fmt.Sprintf(`
		UPDATE orders SET
			status = $2,
			processed_at = CASE WHEN $2 = 'processing' THEN now() ELSE processed_at END,
			completed_at = CASE WHEN $2 = 'completed' THEN now() ELSE completed_at END,
			cancelled_at = CASE WHEN $2 = 'cancelled' THEN now() ELSE cancelled_at END,
			updated_at = now()
		WHERE id = $1 AND status = ANY($3::text[]) AND deleted_at IS NULL
		RETURNING %s
	`, orderColumns)

	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	order, err := r.scanOrder(q.QueryRow(ctx, query, id, string(to), fromStrs))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Str("order_id", id.String()).
				Str("to", string(to)).
				Msg("status transition skipped, order not in expected status")
			return nil, false, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to transition order status")
		return nil, false, fmt.Errorf("failed to transition order status: %w", err)
	}

	r.logger.Debug().
		Str("order_id", id.String()).
		Str("to", string(to)).
		Msg("order status transitioned")

	return order, true, nil
}

// UpdateCharges updates tax, discount and/or notes. Nil fields are left untouched.
func (r *orderRepository) UpdateCharges(ctx context.Context, id uuid.UUID, tax, discount *decimal.Decimal, notes *string) error {
	query := `
		UPDATE orders SET
			tax = COALESCE($2, tax),
			discount = COALESCE($3, discount),
			notes = COALESCE($4, notes),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`

	if _, err := r.pool.Exec(ctx, query, id, tax, discount, notes); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order charges")
		return fmt.Errorf("failed to update order charges: %w", err)
	}
	return nil
}

// UpdateTotals persists a recomputed subtotal and total.
func (r *orderRepository) UpdateTotals(ctx context.Context, id uuid.UUID, subtotal, total decimal.Decimal) error {
	query := `UPDATE orders SET subtotal = $2, total = $3, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`

	if _, err := r.pool.Exec(ctx, query, id, subtotal, total); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order totals")
		return fmt.Errorf("failed to update order totals: %w", err)
	}
	return nil
}

// AppendNote appends an audit note to the order's notes field. The note
// survives even when the order is soft deleted afterwards.
func (r *orderRepository) AppendNote(ctx context.Context, id uuid.UUID, note string) error {
	query := `UPDATE orders SET notes = notes || $2, updated_at = now() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, "\n"+note); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to append order note")
		return fmt.Errorf("failed to append order note: %w", err)
	}

	r.logger.Debug().Str("order_id", id.String()).Msg("order note appended")
	return nil
}

// SoftDelete marks the order deleted within the provided transaction.
func (r *orderRepository) SoftDelete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `UPDATE orders SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`

	ct, err := tx.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to soft delete order")
		return false, fmt.Errorf("failed to soft delete order: %w", err)
	}

	return ct.RowsAffected() == 1, nil
}

// OrderNumberExists reports whether an order with the given number exists,
// including soft-deleted orders.
func (r *orderRepository) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1)`, number).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("order_number", number).Msg("failed to check order number")
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return exists, nil
}

func (r *orderRepository) scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	var status string
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.UserID, &status,
		&order.Subtotal, &order.Tax, &order.Discount, &order.Total, &order.Notes,
		&order.ProcessedAt, &order.CompletedAt, &order.CancelledAt,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = model.OrderStatus(status)
	return &order, nil
}
