package repository

import (
	"context"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// AdjustStock atomically adds delta to the product's stock, clamping the
	// result at zero, and returns the new stock value.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)

	// AdjustStockTx is AdjustStock executed within the provided transaction.
	AdjustStockTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) (int, error)
}

// OrderRepository defines the interface for order data access operations.
// Orders are soft deleted; all reads exclude deleted rows.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// List retrieves orders matching the filter, newest first.
	List(ctx context.Context, filter model.OrderListFilter) ([]model.Order, error)

	// TransitionStatus moves the order to the target status if and only if its
	// current status is one of from, setting the timestamp column matching the
	// transition. It reports whether a row was updated; false means the order
	// was already past the expected status (or deleted) and nothing changed.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus) (*model.Order, bool, error)

	// TransitionStatusTx is TransitionStatus executed within the provided transaction.
	TransitionStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus) (*model.Order, bool, error)

	// UpdateCharges updates tax, discount and/or notes. Nil fields are left untouched.
	UpdateCharges(ctx context.Context, id uuid.UUID, tax, discount *decimal.Decimal, notes *string) error

	// UpdateTotals persists a recomputed subtotal and total.
	UpdateTotals(ctx context.Context, id uuid.UUID, subtotal, total decimal.Decimal) error

	// AppendNote appends an audit note to the order's notes field.
	AppendNote(ctx context.Context, id uuid.UUID, note string) error

	// SoftDelete marks the order deleted within the provided transaction.
	SoftDelete(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)

	// OrderNumberExists reports whether an order with the given number exists,
	// including soft-deleted orders.
	OrderNumberExists(ctx context.Context, number string) (bool, error)
}
