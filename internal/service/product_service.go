package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/cache"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"
	"github.com/JonasHenriqueDev/order-mananger-crud/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const productListKeyPattern = "products:list:*"

// productService implements ProductService. Listing reads go through the
// cache; every stock write invalidates the listing keys synchronously.
type productService struct {
	productRepo repository.ProductRepository
	cache       cache.Cache
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	listCache cache.Cache,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ProductService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &productService{
		productRepo: productRepo,
		cache:       listCache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves active products with pagination, served through the
// listing cache. Cache failures degrade to direct reads.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	key := fmt.Sprintf("products:list:limit:%d:offset:%d", limit, offset)

	if data, hit, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, falling back to database")
	} else if hit {
		var products []model.Product
		if err := json.Unmarshal(data, &products); err == nil {
			s.logger.Debug().Str("key", key).Msg("product listing served from cache")
			return products, nil
		}
		s.logger.Warn().Str("key", key).Msg("invalid cache entry, falling back to database")
	}

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}

	if data, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}

	return products, nil
}

// GetByID retrieves a single product.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

// AdjustStock atomically applies a signed stock delta, clamped at zero, then
// invalidates the listing cache before returning.
func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	stock, err := s.productRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Invalidate(ctx, productListKeyPattern); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate product listing cache")
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Int("delta", delta).
		Int("stock", stock).
		Msg("product stock adjusted")

	return stock, nil
}
