package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hirdavat/internal/config"
	"hirdavat/internal/database"
	"hirdavat/internal/handler"
	"hirdavat/internal/notify"
	"hirdavat/internal/payment"
	"hirdavat/internal/repository"
	"hirdavat/internal/router"
	"hirdavat/internal/service"
	"hirdavat/internal/settings"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting hirdavat checkout API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	settingsRepo := repository.NewSettingsRepository(pool, logger)

	settingsLoader, err := newSettingsLoader(ctx, cfg, settingsRepo, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize settings loader: %w", err)
	}

	// Outbound integrations
	gateway := payment.NewClient(cfg.Gateway, logger)
	notifier := notify.NewNotifier(notify.NewSender(cfg.SMTP, logger), cfg.Storefront.BaseURL, logger)
	dispatcher := notify.NewDispatcher(cfg.SMTP.NotifyTimeout, logger)

	// Initialize services
	validator := service.NewRequestValidator()
	ledger := service.NewOrderLedger(orderRepo, logger)
	checkoutService := service.NewCheckoutService(ledger, productRepo, settingsLoader, gateway, notifier, dispatcher, validator, logger)
	cancellationService := service.NewCancellationService(ledger, gateway, notifier, dispatcher, validator, logger)
	trackingService := service.NewTrackingService(ledger, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Checkout: handler.NewCheckoutHandler(checkoutService, cfg.Storefront.BaseURL, cfg.Server.Debug, logger),
		Orders:   handler.NewOrderHandler(trackingService, cancellationService, cfg.Server.Debug, logger),
		Health:   handler.NewHealthHandler(pool, logger),
	}, router.Options{
		APIKey:        cfg.Auth.APIKey,
		AllowedOrigin: cfg.Storefront.BaseURL,
	}, logger)

	// Create HTTP server. The write timeout has to outlast a slow gateway round trip.
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Gateway.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// Let in-flight confirmation and cancellation emails finish.
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("pending notifications abandoned")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newSettingsLoader picks the shipping settings source. With S3 the local
// file, or failing that the database, serves when the object is unreadable.
func newSettingsLoader(ctx context.Context, cfg *config.Config, repo repository.SettingsRepository, logger zerolog.Logger) (settings.Loader, error) {
	dbLoader := settings.NewDatabaseLoader(repo, logger)

	switch cfg.Settings.Source {
	case config.SettingsSourceFile:
		logger.Info().Str("file", cfg.Settings.File).Msg("using local file for shipping settings")
		return settings.NewFileLoader(cfg.Settings.File, logger), nil

	case config.SettingsSourceS3:
		secondary := dbLoader
		if cfg.Settings.File != "" {
			secondary = settings.NewFileLoader(cfg.Settings.File, logger)
		}

		s3Loader, err := settings.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Key, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to secondary settings source only")
			return secondary, nil
		}
		return settings.NewFallbackLoader(s3Loader, secondary, logger), nil

	default:
		logger.Info().Msg("using database for shipping settings")
		return dbLoader, nil
	}
}
