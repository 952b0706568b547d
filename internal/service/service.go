package service

import (
	"context"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"

	"github.com/google/uuid"
)

// OrderService owns the order lifecycle state machine. All status mutations
// go through it; it persists transitions before emitting events, exactly once
// per transition.
type OrderService interface {
	// Create creates a pending order with a fresh unique order number,
	// persisting the order, its items, and the per-item stock decrements in
	// one atomic transaction, then emits OrderCreated.
	Create(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order with its items. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// List retrieves orders matching the filter, newest first.
	List(ctx context.Context, filter model.OrderListFilter) ([]model.OrderResponse, error)

	// Update applies an explicit caller update: a status change routed
	// through the state machine and/or new tax, discount or notes values
	// (totals are recomputed when charges change). Invalid transitions are
	// rejected with a domain error.
	Update(ctx context.Context, id uuid.UUID, req *model.OrderUpdateRequest) (*model.OrderResponse, error)

	// Cancel cancels a pending or processing order and restores stock for
	// every item. Cancelling a completed or cancelled order is rejected with
	// ErrOrderNotCancellable.
	Cancel(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// Delete soft-deletes a pending order and restores stock for every item.
	// Non-pending orders are rejected with ErrOrderNotDeletable.
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkAsProcessing advances pending to processing. It reports false,
	// without error, when the order is no longer pending; job guards rely on
	// this to make duplicate or late dispatch a no-op.
	MarkAsProcessing(ctx context.Context, id uuid.UUID) (bool, error)

	// MarkAsCompleted advances processing to completed, with the same
	// no-op-on-stale semantics as MarkAsProcessing.
	MarkAsCompleted(ctx context.Context, id uuid.UUID) (bool, error)

	// AppendFailureNote records a job failure on the order's audit trail.
	AppendFailureNote(ctx context.Context, id uuid.UUID, note string) error
}

// ProductService exposes the narrow product collaborator surface the order
// pipeline needs, plus the cached listing used by the catalogue endpoints.
type ProductService interface {
	// GetAll retrieves active products with pagination, served through the
	// listing cache.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// AdjustStock atomically applies a signed stock delta, clamped at zero,
	// and invalidates the listing cache.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
}
