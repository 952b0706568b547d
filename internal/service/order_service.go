package service

import (
	"context"
	"fmt"
	"time"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/event"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	bus         *event.Bus
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	bus *event.Bus,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		bus:         bus,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Create creates a pending order with a fresh unique order number, persists
// the order, its items, and the stock decrements in one transaction, then
// emits OrderCreated.
func (s *orderService) Create(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, req)
	if err != nil {
		return nil, err
	}

	orderNumber, err := s.generateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &model.Order{
		ID:          uuid.New(),
		OrderNumber: orderNumber,
		UserID:      req.UserID,
		Status:      model.StatusPending,
		Tax:         req.Tax.Round(2),
		Discount:    req.Discount.Round(2),
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	items := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = model.NewOrderItem(order.ID, products[item.ProductID], item.Quantity)
	}
	order.RecomputeTotals(items)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	// Stock decrements ride the creating transaction: either the whole order
	// and every decrement commit, or none do.
	for _, item := range items {
		if _, err = s.productRepo.AdjustStockTx(ctx, tx, item.ProductID, -item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(items)).
		Str("total", order.Total.String()).
		Msg("order created")

	s.bus.PublishOrderCreated(ctx, event.OrderCreated{Order: *order, Items: items})

	return model.NewOrderResponse(*order, items), nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, nil
	}
	return model.NewOrderResponse(*order, items), nil
}

// List retrieves orders matching the filter, newest first.
func (s *orderService) List(ctx context.Context, filter model.OrderListFilter) ([]model.OrderResponse, error) {
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	responses := make([]model.OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = *model.NewOrderResponse(order, nil)
	}
	return responses, nil
}

// Update applies an explicit caller update.
func (s *orderService) Update(ctx context.Context, id uuid.UUID, req *model.OrderUpdateRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("order update request is nil")
	}

	if req.Status != nil {
		if err := s.applyStatusChange(ctx, id, *req.Status); err != nil {
			return nil, err
		}
	}

	if req.Tax != nil || req.Discount != nil || req.Notes != nil {
		if err := s.orderRepo.UpdateCharges(ctx, id, req.Tax, req.Discount, req.Notes); err != nil {
			return nil, fmt.Errorf("failed to update order: %w", err)
		}

		// A tax or discount change invalidates the stored total.
		if req.Tax != nil || req.Discount != nil {
			if err := s.recomputeTotals(ctx, id); err != nil {
				return nil, err
			}
		}
	}

	resp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, model.ErrOrderNotFound
	}
	return resp, nil
}

// applyStatusChange routes an explicitly requested status through the state
// machine. Unlike the job-guard path, a stale or invalid transition here is a
// caller fault and surfaces as a domain error.
func (s *orderService) applyStatusChange(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	switch status {
	case model.StatusProcessing:
		changed, err := s.MarkAsProcessing(ctx, id)
		if err != nil {
			return err
		}
		if !changed {
			return model.ErrInvalidTransition
		}
	case model.StatusCompleted:
		changed, err := s.MarkAsCompleted(ctx, id)
		if err != nil {
			return err
		}
		if !changed {
			return model.ErrInvalidTransition
		}
	case model.StatusCancelled:
		if _, err := s.Cancel(ctx, id); err != nil {
			return err
		}
	default:
		return model.ErrInvalidTransition
	}
	return nil
}

// Cancel cancels a pending or processing order and restores stock for every
// item in the same transaction as the status change.
func (s *orderService) Cancel(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !order.CanBeCancelled() {
		return nil, model.ErrOrderNotCancellable
	}

	previousStatus := order.Status

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cancelled, changed, err := s.orderRepo.TransitionStatusTx(ctx, tx, id,
		[]model.OrderStatus{model.StatusPending, model.StatusProcessing}, model.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if !changed {
		// Raced with a concurrent transition past a cancellable status.
		err = model.ErrOrderNotCancellable
		return nil, err
	}

	for _, item := range items {
		if _, err = s.productRepo.AdjustStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("previous_status", string(previousStatus)).
		Msg("order cancelled")

	s.bus.PublishOrderStatusChanged(ctx, event.OrderStatusChanged{
		Order:          *cancelled,
		PreviousStatus: previousStatus,
		NewStatus:      model.StatusCancelled,
	})

	return model.NewOrderResponse(*cancelled, items), nil
}

// Delete soft-deletes a pending order, restoring stock for every item.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}
	if order.Status != model.StatusPending {
		return model.ErrOrderNotDeletable
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	for _, item := range items {
		if _, err = s.productRepo.AdjustStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	deleted, err := s.orderRepo.SoftDelete(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if !deleted {
		err = model.ErrOrderNotFound
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order soft deleted")

	return nil
}

// MarkAsProcessing advances pending to processing and emits
// OrderStatusChanged after the transition is persisted. A stale status is a
// no-op, not an error.
func (s *orderService) MarkAsProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.transition(ctx, id, model.StatusPending, model.StatusProcessing)
}

// MarkAsCompleted advances processing to completed with the same semantics.
func (s *orderService) MarkAsCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.transition(ctx, id, model.StatusProcessing, model.StatusCompleted)
}

func (s *orderService) transition(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	order, changed, err := s.orderRepo.TransitionStatus(ctx, id, []model.OrderStatus{from}, to)
	if err != nil {
		return false, fmt.Errorf("failed to transition order: %w", err)
	}
	if !changed {
		return false, nil
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("order status changed")

	s.bus.PublishOrderStatusChanged(ctx, event.OrderStatusChanged{
		Order:          *order,
		PreviousStatus: from,
		NewStatus:      to,
	})

	return true, nil
}

// AppendFailureNote records a job failure on the order's audit trail.
func (s *orderService) AppendFailureNote(ctx context.Context, id uuid.UUID, note string) error {
	if err := s.orderRepo.AppendNote(ctx, id, note); err != nil {
		return fmt.Errorf("failed to append failure note: %w", err)
	}
	return nil
}

// recomputeTotals re-derives subtotal and total from the current item set and
// persists them.
func (s *orderService) recomputeTotals(ctx context.Context, id uuid.UUID) error {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to recompute totals: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	order.RecomputeTotals(items)

	if err := s.orderRepo.UpdateTotals(ctx, id, order.Subtotal, order.Total); err != nil {
		return fmt.Errorf("failed to recompute totals: %w", err)
	}
	return nil
}

// loadProducts fetches and validates every product referenced by the request:
// all must exist, be active, and have sufficient stock. These are
// precondition checks; the stock decrement itself happens atomically inside
// the creating transaction.
func (s *orderService) loadProducts(ctx context.Context, req *model.OrderRequest) (map[uuid.UUID]model.Product, error) {
	ids := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn().Str("product_id", item.ProductID.String()).Msg("product not found")
			return nil, model.ErrProductNotFound
		}
		if !product.IsActive() {
			s.logger.Warn().Str("product_id", item.ProductID.String()).Msg("product not active")
			return nil, model.ErrProductInactive
		}
		if product.Stock < item.Quantity {
			s.logger.Warn().
				Str("product_id", item.ProductID.String()).
				Int("stock", product.Stock).
				Int("requested", item.Quantity).
				Msg("insufficient stock")
			return nil, model.ErrInsufficientStock
		}
	}

	return byID, nil
}

// generateOrderNumber produces a fresh order number, retrying generation
// until it does not collide with an existing record.
func (s *orderService) generateOrderNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		number, err := newOrderNumber()
		if err != nil {
			return "", err
		}

		exists, err := s.orderRepo.OrderNumberExists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("failed to generate order number: %w", err)
		}
		if !exists {
			return number, nil
		}

		s.logger.Warn().Str("order_number", number).Msg("order number collision, regenerating")
	}

	return "", fmt.Errorf("failed to generate a unique order number after %d attempts", maxOrderNumberAttempts)
}

// validateOrderRequest validates the order request shape.
func validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("order request is nil")
	}

	if req.UserID == uuid.Nil {
		return fmt.Errorf("order owner is required")
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("item %d: product ID is required", i)
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}

	if req.Tax.IsNegative() || req.Discount.IsNegative() {
		return fmt.Errorf("tax and discount must not be negative")
	}

	return nil
}
