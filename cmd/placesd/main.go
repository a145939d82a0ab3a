// Command placesd serves the places catalog and the user's picked places for
// local development and integration tests.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/place-picker/internal/backend"
	"github.com/couchcryptid/place-picker/internal/config"
	"github.com/couchcryptid/place-picker/internal/observability"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadBackend()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)

	places, err := backend.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		logger.Error("failed to load catalog", "file", cfg.CatalogFile, "error", err)
		os.Exit(1)
	}

	var store backend.Store
	var rdb *redis.Client
	switch cfg.StoreDriver {
	case config.StoreRedis:
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		store = backend.NewRedisStore(rdb, "")
		logger.Info("using redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	default:
		store = backend.NewMemoryStore()
		logger.Info("using memory store")
	}

	srv := backend.NewServer(cfg.Addr, places, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
