package repository

import (
	"context"
	"errors"
	"fmt"

	"hirdavat/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type settingsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSettingsRepository creates a new PostgreSQL-backed settings repository.
func NewSettingsRepository(pool *pgxpool.Pool, logger zerolog.Logger) SettingsRepository {
	return &settingsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "settings").Logger(),
	}
}

// GetShippingTiers returns the tier table in storage order. The pricing
// engine sorts it before use.
func (r *settingsRepository) GetShippingTiers(ctx context.Context) ([]model.PriceTier, error) {
	query := `SELECT max_weight, price FROM shipping_tiers ORDER BY id`

	tiers, err := findMany(ctx, r.pool, scanTier, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query shipping tiers")
		return nil, fmt.Errorf("failed to query shipping tiers: %w", err)
	}
	return tiers, nil
}

func (r *settingsRepository) GetFreeShippingThreshold(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT free_shipping_threshold FROM store_settings WHERE id = 1`

	threshold, err := findOne(ctx, r.pool, scanDecimal, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query store settings")
		return decimal.Zero, fmt.Errorf("failed to query store settings: %w", err)
	}
	if threshold == nil {
		return decimal.Zero, nil
	}
	return *threshold, nil
}

// ReplaceShippingTiers swaps the whole tier table atomically.
func (r *settingsRepository) ReplaceShippingTiers(ctx context.Context, tiers []model.PriceTier) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.logger.Error().Err(err).Msg("failed to rollback transaction")
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM shipping_tiers`); err != nil {
		return fmt.Errorf("failed to clear shipping tiers: %w", err)
	}

	batch := &pgx.Batch{}
	for _, tier := range tiers {
		batch.Queue(`INSERT INTO shipping_tiers (max_weight, price) VALUES ($1, $2)`, tier.MaxWeight, tier.Price)
	}
	results := tx.SendBatch(ctx, batch)
	for range tiers {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert shipping tier: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to insert shipping tiers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info().Int("tiers", len(tiers)).Msg("shipping tiers replaced")
	return nil
}

func (r *settingsRepository) SetFreeShippingThreshold(ctx context.Context, threshold decimal.Decimal) error {
	query := `
		INSERT INTO store_settings (id, free_shipping_threshold, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET free_shipping_threshold = EXCLUDED.free_shipping_threshold, updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, threshold); err != nil {
		r.logger.Error().Err(err).Msg("failed to update free shipping threshold")
		return fmt.Errorf("failed to update free shipping threshold: %w", err)
	}
	return nil
}

func scanTier(row pgx.Row) (model.PriceTier, error) {
	var t model.PriceTier
	err := row.Scan(&t.MaxWeight, &t.Price)
	return t, err
}

func scanDecimal(row pgx.Row) (decimal.Decimal, error) {
	var d decimal.Decimal
	err := row.Scan(&d)
	return d, err
}
