package repository

import (
	"context"
	"fmt"

	"hirdavat/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

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

// GetByIDs retrieves multiple products by their IDs in one round trip.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT id, name, price, weight, category, created_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY name
	`

	products, err := findMany(ctx, r.pool, scanProduct, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}

	if len(products) != len(ids) {
		r.logger.Debug().
			Int("requested", len(ids)).
			Int("found", len(products)).
			Msg("some product IDs were not found")
	}

	return products, nil
}

// Upsert inserts or replaces catalogue rows.
func (r *productRepository) Upsert(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	query := `
		INSERT INTO products (id, name, price, weight, category)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price, weight = EXCLUDED.weight, category = EXCLUDED.category
	`

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(query, p.ID, p.Name, p.Price, p.Weight, p.Category)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range products {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Str("product_id", products[i].ID).Msg("failed to upsert product")
			return fmt.Errorf("failed to upsert product %s: %w", products[i].ID, err)
		}
	}

	r.logger.Info().Int("count", len(products)).Msg("products upserted")
	return nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Weight, &p.Category, &p.CreatedAt)
	return p, err
}
