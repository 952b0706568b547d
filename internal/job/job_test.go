package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/event"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/queue"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) Create(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *mockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *mockOrderService) List(ctx context.Context, filter model.OrderListFilter) ([]model.OrderResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderResponse), args.Error(1)
}

func (m *mockOrderService) Update(ctx context.Context, id uuid.UUID, req *model.OrderUpdateRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *mockOrderService) Cancel(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *mockOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOrderService) MarkAsProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderService) MarkAsCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderService) AppendFailureNote(ctx context.Context, id uuid.UUID, note string) error {
	args := m.Called(ctx, id, note)
	return args.Error(0)
}

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *mockProductService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func testDeps(orders *mockOrderService, products *mockProductService) Deps {
	return Deps{
		Orders:   orders,
		Products: products,
		Policy: Policy{
			ProcessBackoff:  []time.Duration{time.Millisecond},
			CompleteBackoff: []time.Duration{time.Millisecond},
			StockBackoff:    []time.Duration{time.Millisecond},
		},
		Logger: zerolog.Nop(),
	}
}

func orderResponse(id uuid.UUID, status model.OrderStatus, items []model.OrderItem) *model.OrderResponse {
	return &model.OrderResponse{
		ID:     id,
		Status: status,
		Items:  items,
	}
}

func TestProcessOrderTask_Run(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	productID := uuid.New()
	items := []model.OrderItem{{ProductID: productID, Quantity: 2}}

	t.Run("advances pending order to processing", func(t *testing.T) {
		orders := new(mockOrderService)
		products := new(mockProductService)
		orders.On("GetByID", ctx, orderID).Return(orderResponse(orderID, model.StatusPending, items), nil)
		orders.On("MarkAsProcessing", ctx, orderID).Return(true, nil)
		products.On("GetByID", ctx, productID).Return(&model.Product{ID: productID, Name: "Widget", Stock: 5}, nil)

		task := NewProcessOrderTask(orderID, testDeps(orders, products))
		err := task.Run(ctx)

		require.NoError(t, err)
		orders.AssertExpectations(t)
		products.AssertExpectations(t)
	})

	t.Run("skips order that is no longer pending", func(t *testing.T) {
		orders := new(mockOrderService)
		products := new(mockProductService)
		orders.On("GetByID", ctx, orderID).Return(orderResponse(orderID, model.StatusCancelled, items), nil)

		task := NewProcessOrderTask(orderID, testDeps(orders, products))
		err := task.Run(ctx)

		require.NoError(t, err)
		orders.AssertNotCalled(t, "MarkAsProcessing", mock.Anything, mock.Anything)
	})

	t.Run("skips missing order", func(t *testing.T) {
		orders := new(mockOrderService)
		products := new(mockProductService)
		orders.On("GetByID", ctx, orderID).Return(nil, nil)

		task := NewProcessOrderTask(orderID, testDeps(orders, products))
		err := task.Run(ctx)

		require.NoError(t, err)
		orders.AssertNotCalled(t, "MarkAsProcessing", mock.Anything, mock.Anything)
	})

	t.Run("skips when another worker won the transition", func(t *testing.T) {
		orders := new(mockOrderService)
		products := new(mockProductService)
		orders.On("GetByID", ctx, orderID).Return(orderResponse(orderID, model.StatusPending, items), nil)
		orders.On("MarkAsProcessing", ctx, orderID).Return(false, nil)

		task := NewProcessOrderTask(orderID, testDeps(orders, products))
		err := task.Run(ctx)

		require.NoError(t, err)
		products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("negative stock after transition is retryable", func(t *testing.T) {
		orders := new(mockOrderService)
		products := new(mockProductService)
		orders.On("GetByID", ctx, orderID).Return(orderResponse(orderID, model.StatusPending, items), nil)
		orders.On("MarkAsProcessing", ctx, orderID).Return(true, nil)
		products.On("GetByID", ctx, productID).Return(&model.Product{ID: productID, Name: "Widget", Stock: -1}, nil)

		task := NewProcessOrderTask(orderID, testDeps(orders, products))
		err := task.Run(ctx)

		require.Error(t, err)
		assert.True(t, queue.IsRetryable(err))
		assert.Contains(t, err.Error(), "insufficient stock")
	})

	t.Run("unexpected errors are not retryable", func(t *testing.T) {
		orders := new(mockOrderService)
		products := new(mockProductService)
		orders.On("GetByID", ctx, orderID).Return(nil, errors.New("connection refused"))

		task := NewProcessOrderTask(orderID, testDeps(orders, products))
		err := task.Run(ctx)

		require.Error(t, err)
		assert.False(t, queue.IsRetryable(err))
	})
}

func TestProcessOrderTask_Failed(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	orders := new(mockOrderService)
	products := new(mockProductService)
	orders.On("AppendFailureNote", ctx, orderID, "[ERROR] Automatic processing failed: insufficient stock for product Widget").Return(nil)

	task := NewProcessOrderTask(orderID, testDeps(orders, products))
	task.Failed(ctx, errors.New("insufficient stock for product Widget"))

	orders.AssertExpectations(t)
}

func TestCompleteOrderTask_Run(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("advances processing order to completed", func(t *testing.T) {
		orders := new(mockOrderService)
		orders.On("GetByID", ctx, orderID).Return(orderResponse(orderID, model.StatusProcessing, nil), nil)
		orders.On("MarkAsCompleted", ctx, orderID).Return(true, nil)

		task := NewCompleteOrderTask(orderID, testDeps(orders, new(mockProductService)))
		err := task.Run(ctx)

		require.NoError(t, err)
		orders.AssertExpectations(t)
	})

	t.Run("skips cancelled order", func(t *testing.T) {
		orders := new(mockOrderService)
		orders.On("GetByID", ctx, orderID).Return(orderResponse(orderID, model.StatusCancelled, nil), nil)

		task := NewCompleteOrderTask(orderID, testDeps(orders, new(mockProductService)))
		err := task.Run(ctx)

		require.NoError(t, err)
		orders.AssertNotCalled(t, "MarkAsCompleted", mock.Anything, mock.Anything)
	})

	t.Run("infrastructure errors are retryable", func(t *testing.T) {
		orders := new(mockOrderService)
		orders.On("GetByID", ctx, orderID).Return(nil, errors.New("connection refused"))

		task := NewCompleteOrderTask(orderID, testDeps(orders, new(mockProductService)))
		err := task.Run(ctx)

		require.Error(t, err)
		assert.True(t, queue.IsRetryable(err))
	})
}

func TestCompleteOrderTask_Failed(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	orders := new(mockOrderService)
	orders.On("AppendFailureNote", ctx, orderID, mock.MatchedBy(func(note string) bool {
		return len(note) > 0 && note[:7] == "[ERROR]"
	})).Return(nil)

	task := NewCompleteOrderTask(orderID, testDeps(orders, new(mockProductService)))
	task.Failed(ctx, errors.New("timeout"))

	orders.AssertExpectations(t)
}

func TestAdjustStockTask_Run(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	t.Run("applies the delta", func(t *testing.T) {
		products := new(mockProductService)
		products.On("AdjustStock", ctx, productID, 3).Return(8, nil)

		task := NewAdjustStockTask(productID, 3, testDeps(new(mockOrderService), products))
		err := task.Run(ctx)

		require.NoError(t, err)
		products.AssertExpectations(t)
	})

	t.Run("infrastructure errors are retryable", func(t *testing.T) {
		products := new(mockProductService)
		products.On("AdjustStock", ctx, productID, 3).Return(0, errors.New("connection refused"))

		task := NewAdjustStockTask(productID, 3, testDeps(new(mockOrderService), products))
		err := task.Run(ctx)

		require.Error(t, err)
		assert.True(t, queue.IsRetryable(err))
	})

	t.Run("missing product is terminal", func(t *testing.T) {
		products := new(mockProductService)
		products.On("AdjustStock", ctx, productID, 3).Return(0, model.ErrProductNotFound)

		task := NewAdjustStockTask(productID, 3, testDeps(new(mockOrderService), products))
		err := task.Run(ctx)

		require.Error(t, err)
		assert.False(t, queue.IsRetryable(err))
	})
}

func TestRegisterListeners(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("order creation enqueues processing", func(t *testing.T) {
		orders := new(mockOrderService)
		done := make(chan struct{})
		orders.On("GetByID", mock.Anything, orderID).
			Run(func(mock.Arguments) { close(done) }).
			Return(nil, nil)

		bus := event.NewBus(zerolog.Nop())
		dispatcher := queue.NewDispatcher(2, zerolog.Nop())
		defer dispatcher.Close(context.Background())

		RegisterListeners(bus, dispatcher, testDeps(orders, new(mockProductService)))
		bus.PublishOrderCreated(ctx, event.OrderCreated{Order: model.Order{ID: orderID}})

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("process task never ran")
		}
	})

	t.Run("pending to processing enqueues completion", func(t *testing.T) {
		orders := new(mockOrderService)
		done := make(chan struct{})
		orders.On("GetByID", mock.Anything, orderID).
			Run(func(mock.Arguments) { close(done) }).
			Return(nil, nil)

		bus := event.NewBus(zerolog.Nop())
		dispatcher := queue.NewDispatcher(2, zerolog.Nop())
		defer dispatcher.Close(context.Background())

		RegisterListeners(bus, dispatcher, testDeps(orders, new(mockProductService)))
		bus.PublishOrderStatusChanged(ctx, event.OrderStatusChanged{
			Order:          model.Order{ID: orderID},
			PreviousStatus: model.StatusPending,
			NewStatus:      model.StatusProcessing,
		})

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("complete task never ran")
		}
	})

	t.Run("other transitions enqueue nothing", func(t *testing.T) {
		orders := new(mockOrderService)

		bus := event.NewBus(zerolog.Nop())
		dispatcher := queue.NewDispatcher(2, zerolog.Nop())
		defer dispatcher.Close(context.Background())

		RegisterListeners(bus, dispatcher, testDeps(orders, new(mockProductService)))
		bus.PublishOrderStatusChanged(ctx, event.OrderStatusChanged{
			Order:          model.Order{ID: orderID},
			PreviousStatus: model.StatusProcessing,
			NewStatus:      model.StatusCompleted,
		})

		time.Sleep(50 * time.Millisecond)
		orders.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}
