package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/api"
	"github.com/jafarshop/restaurant/internal/cart"
	"github.com/jafarshop/restaurant/internal/config"
	"github.com/jafarshop/restaurant/internal/logging"
	"github.com/jafarshop/restaurant/internal/repository"
	"github.com/jafarshop/restaurant/internal/repository/memory"
	"github.com/jafarshop/restaurant/internal/repository/postgres"
	"github.com/jafarshop/restaurant/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	repos, db, err := openStorage(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	registry := cart.NewRegistry(cart.Settings{
		DeliveryFee:    cfg.Cart.DeliveryFee,
		PackagingFee:   cfg.Cart.PackagingFee,
		ServiceFee:     cfg.Cart.ServiceFee,
		TaxRate:        cfg.Cart.TaxRate,
		DeliveryMethod: cfg.Cart.DefaultDeliveryMethod,
	}, cart.Limits{
		MaxSessions: cfg.Cart.MaxSessions,
		IdleTTL:     cfg.Cart.SessionTTL,
	}, logger)

	router := api.NewRouter(cfg, repos, registry, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("storage", cfg.StorageDriver),
			zap.Duration("cart_session_ttl", cfg.Cart.SessionTTL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

// openStorage builds the repositories for the configured driver. The returned
// *sql.DB is nil for the memory driver.
func openStorage(cfg *config.Config, logger *zap.Logger) (*repository.Repositories, *sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate: %w", err)
		}
		return postgres.NewRepositories(db, logger), db, nil
	default:
		repos := memory.NewRepositories()
		if err := service.NewCouponService(repos, logger).EnsureSeed(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to seed coupons: %w", err)
		}
		return repos, nil, nil
	}
}
