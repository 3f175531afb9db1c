package settings

import (
	"context"

	"hirdavat/internal/model"

	"github.com/rs/zerolog"
)

// fallbackLoader tries primary first, then secondary.
type fallbackLoader struct {
	primary   Loader
	secondary Loader
	logger    zerolog.Logger
}

// NewFallbackLoader creates a loader that falls back to secondary when
// primary fails. A nil primary uses secondary only.
func NewFallbackLoader(primary, secondary Loader, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "fallback-settings-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context) (model.ShippingSettings, error) {
	if l.primary != nil {
		s, err := l.primary.Load(ctx)
		if err == nil {
			return s, nil
		}
		if ctx.Err() != nil {
			return model.ShippingSettings{}, ctx.Err()
		}
		l.logger.Warn().Err(err).Msg("primary settings source failed, falling back")
	}

	return l.secondary.Load(ctx)
}
