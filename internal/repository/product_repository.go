package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, slug, sku, description, price, stock, status, is_featured, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetAll retrieves active products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE status = 'active' AND deleted_at IS NULL
		ORDER BY name
		LIMIT $1 OFFSET $2
	`, productColumns)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return r.collectProducts(rows)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1 AND deleted_at IS NULL`, productColumns)

	p, err := r.scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = ANY($1) AND deleted_at IS NULL
		ORDER BY name
	`, productColumns)

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	return r.collectProducts(rows)
}

// AdjustStock atomically adds delta to the product's stock, clamping the
// result at zero. The clamp is silent: a delta whose magnitude exceeds the
// current stock leaves the product at zero rather than failing.
func (r *productRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	return r.adjustStock(ctx, r.pool, id, delta)
}

// AdjustStockTx is AdjustStock executed within the provided transaction, so
// order creation can decrement stock atomically with the order insert.
func (r *productRepository) AdjustStockTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) (int, error) {
	return r.adjustStock(ctx, tx, id, delta)
}

func (r *productRepository) adjustStock(ctx context.Context, q queryRower, id uuid.UUID, delta int) (int, error) {
	// Single-statement read-modify-write so concurrent adjusters on the same
	// product serialize on the row lock instead of losing updates.
	query := `
		UPDATE products
		SET stock = GREATEST(stock + $2, 0), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING stock
	`

	var stock int
	err := q.QueryRow(ctx, query, id, delta).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrProductNotFound
		}
		r.logger.Error().Err(err).
			Str("product_id", id.String()).
			Int("delta", delta).
			Msg("failed to adjust stock")
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}

	r.logger.Debug().
		Str("product_id", id.String()).
		Int("delta", delta).
		Int("stock", stock).
		Msg("stock adjusted")

	return stock, nil
}

func (r *productRepository) collectProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &p.Price,
		&p.Stock, &p.Status, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
