package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bistro/internal/config"
	"bistro/internal/database"
	"bistro/internal/handler"
	"bistro/internal/menu"
	"bistro/internal/repository"
	"bistro/internal/router"
	"bistro/internal/service"

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
	logger.Info().Msg("starting bistro API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	dishRepo := repository.NewDishRepository(pool, logger)
	lineRepo := repository.NewLineItemRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	// Import the dish catalogue at startup when a menu file is configured
	if cfg.Menu.Path != "" {
		if err := importMenu(ctx, cfg.Menu, dishRepo, logger); err != nil {
			return fmt.Errorf("failed to import menu: %w", err)
		}
	}

	// Initialize services
	basketService := service.NewBasketService(orderRepo, lineRepo, dishRepo, userRepo, logger)
	pricingService := service.NewPricingService(orderRepo, lineRepo, userRepo, logger)
	checkoutService := service.NewCheckoutService(orderRepo, lineRepo, userRepo, logger)
	listingService := service.NewListingService(orderRepo, logger)

	// Initialize HTTP handlers
	basketHandler := handler.NewBasketHandler(basketService, pricingService, logger)
	orderHandler := handler.NewOrderHandler(checkoutService, listingService, basketService, logger)
	adminHandler := handler.NewAdminHandler(listingService, logger)

	// Initialize router
	mux := router.New(basketHandler, orderHandler, adminHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
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

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// importMenu builds the menu loader chain and runs a catalogue import.
// S3 failures fall back to the local file system.
func importMenu(ctx context.Context, cfg config.MenuConfig, dishRepo repository.DishRepository, logger zerolog.Logger) error {
	fileLoader := menu.NewFileLoader(logger)

	var loader menu.Loader = fileLoader
	if cfg.S3Enabled {
		s3Loader, err := menu.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 menu loader, falling back to local file system only")
		} else {
			loader = menu.NewFallbackLoader(s3Loader, fileLoader, cfg.S3Prefix, logger)
		}
	}

	importer := menu.NewImporter(loader, dishRepo, logger)
	return importer.Import(ctx, cfg.Path)
}
