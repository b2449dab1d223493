/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the JuicE storefront engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env + environment configuration
  2. Build zap logger for the environment
  3. Open the cart store (memory, sqlite, or redis)
  4. Pick the delivery resolver (geocode provider or ZIP bucket)
  5. Create the checkout session and API handler
  6. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

SEE ALSO:
  - config/config.go: Environment variable reference
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/juice/storefront-engine/api"
	"github.com/juice/storefront-engine/cart"
	memstore "github.com/juice/storefront-engine/cart/store"
	"github.com/juice/storefront-engine/checkout"
	"github.com/juice/storefront-engine/config"
	"github.com/juice/storefront-engine/delivery"
	"github.com/juice/storefront-engine/pricing"
	redisstore "github.com/juice/storefront-engine/store/redis"
	"github.com/juice/storefront-engine/store/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.String("kind", cfg.Store.Kind), zap.Error(err))
	}
	defer closeStore()

	resolver := newResolver(cfg, logger)
	payments := checkout.NewHTTPPaymentClient(cfg.Payment.EndpointURL)

	sessionID := uuid.NewString()
	ledger, err := cart.NewLedger(ctx, sessionID, store, pricing.DefaultTiers, logger)
	if err != nil {
		logger.Fatal("failed to restore cart", zap.Error(err))
	}
	session := checkout.NewSession(sessionID, ledger, resolver, payments, logger)

	handler := api.NewHandler(session, logger)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Kind),
			zap.String("delivery_mode", cfg.Delivery.Mode))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Server.AppEnv == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logger.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

// newStore opens the configured cart store and returns a close func.
func newStore(ctx context.Context, cfg *config.Config) (cart.Store, func(), error) {
	switch cfg.Store.Kind {
	case "memory":
		return memstore.NewMemory(), func() {}, nil
	case "redis":
		s, err := redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "sqlite":
		s, err := sqlite.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}

func newResolver(cfg *config.Config, logger *zap.Logger) delivery.Resolver {
	if cfg.Delivery.Mode == "geocode" && cfg.Delivery.GeocoderBaseURL != "" {
		return delivery.NewGeocodeResolver(delivery.NewHTTPProvider(cfg.Delivery.GeocoderBaseURL), logger)
	}
	return delivery.NewZIPBucketResolver(logger)
}
