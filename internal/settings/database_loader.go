package settings

import (
	"context"
	"fmt"

	"hirdavat/internal/model"
	"hirdavat/internal/repository"

	"github.com/rs/zerolog"
)

type databaseLoader struct {
	repo   repository.SettingsRepository
	logger zerolog.Logger
}

// NewDatabaseLoader reads the tier table and threshold from Postgres.
func NewDatabaseLoader(repo repository.SettingsRepository, logger zerolog.Logger) Loader {
	return &databaseLoader{
		repo:   repo,
		logger: logger.With().Str("component", "database-settings-loader").Logger(),
	}
}

func (l *databaseLoader) Load(ctx context.Context) (model.ShippingSettings, error) {
	tiers, err := l.repo.GetShippingTiers(ctx)
	if err != nil {
		return model.ShippingSettings{}, fmt.Errorf("failed to load shipping tiers: %w", err)
	}

	threshold, err := l.repo.GetFreeShippingThreshold(ctx)
	if err != nil {
		return model.ShippingSettings{}, fmt.Errorf("failed to load free shipping threshold: %w", err)
	}

	s := model.ShippingSettings{Tiers: tiers, FreeShippingThreshold: threshold}
	if err := s.Validate(); err != nil {
		l.logger.Error().Err(err).Msg("stored shipping settings are invalid")
		return model.ShippingSettings{}, fmt.Errorf("invalid stored settings: %w", err)
	}

	return s, nil
}
