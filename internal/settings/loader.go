// Package settings loads the shipping settings snapshot (tier table and
// free-shipping threshold). Loaders are called once per request so admin
// edits apply to the next checkout without a restart.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"hirdavat/internal/model"

	"github.com/rs/zerolog"
)

// Loader returns the current shipping settings.
type Loader interface {
	Load(ctx context.Context) (model.ShippingSettings, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (model.ShippingSettings, error)

func (f LoaderFunc) Load(ctx context.Context) (model.ShippingSettings, error) {
	return f(ctx)
}

// Static always returns the same snapshot.
func Static(s model.ShippingSettings) Loader {
	return LoaderFunc(func(context.Context) (model.ShippingSettings, error) {
		return s, nil
	})
}

// Decode parses and validates a JSON settings document:
//
//	{"tiers":[{"maxWeight":"1","price":"65"}],"freeShippingThreshold":"1500"}
func Decode(r io.Reader) (model.ShippingSettings, error) {
	var s model.ShippingSettings
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return model.ShippingSettings{}, fmt.Errorf("failed to decode settings document: %w", err)
	}
	if err := s.Validate(); err != nil {
		return model.ShippingSettings{}, fmt.Errorf("invalid settings document: %w", err)
	}
	return s, nil
}

// fileLoader reads the settings document from the local file system.
type fileLoader struct {
	path   string
	logger zerolog.Logger
}

// NewFileLoader creates a loader that re-reads path on every call.
func NewFileLoader(path string, logger zerolog.Logger) Loader {
	return &fileLoader{
		path:   path,
		logger: logger.With().Str("component", "file-settings-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context) (model.ShippingSettings, error) {
	if err := ctx.Err(); err != nil {
		return model.ShippingSettings{}, err
	}

	file, err := os.Open(l.path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", l.path).Msg("failed to open settings file")
		return model.ShippingSettings{}, fmt.Errorf("failed to open settings file %s: %w", l.path, err)
	}
	defer file.Close()

	s, err := Decode(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", l.path).Msg("failed to read settings file")
		return model.ShippingSettings{}, err
	}

	l.logger.Debug().
		Str("file", l.path).
		Int("tiers", len(s.Tiers)).
		Msg("settings loaded from file")

	return s, nil
}
