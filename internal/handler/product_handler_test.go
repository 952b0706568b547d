package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func productRouter(h *ProductHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/products", h.GetAll)
	r.Get("/api/products/{id}", h.GetByID)
	return r
}

func TestProductHandler_GetAll(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("lists with pagination", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		products := []model.Product{{ID: uuid.New(), Name: "Product A", Status: model.ProductActive}}
		mockService.On("GetAll", mock.Anything, 5, 10).Return(products, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/products?limit=5&offset=10", nil)
		rec := httptest.NewRecorder()
		productRouter(h).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var got []model.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Product A", got[0].Name)
	})

	t.Run("defaults pagination", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		mockService.On("GetAll", mock.Anything, 10, 0).Return([]model.Product{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		rec := httptest.NewRecorder()
		productRouter(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestProductHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	productID := uuid.New()

	t.Run("found", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		mockService.On("GetByID", mock.Anything, productID).
			Return(&model.Product{ID: productID, Name: "Product A"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID.String(), nil)
		rec := httptest.NewRecorder()
		productRouter(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		mockService.On("GetByID", mock.Anything, productID).Return(nil, model.ErrProductNotFound)

		req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID.String(), nil)
		rec := httptest.NewRecorder()
		productRouter(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		h := NewProductHandler(new(MockProductService), logger)

		req := httptest.NewRequest(http.MethodGet, "/api/products/nope", nil)
		rec := httptest.NewRecorder()
		productRouter(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
