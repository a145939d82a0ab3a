package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/place-picker/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/place-picker/internal/adapter/kafka"
	"github.com/couchcryptid/place-picker/internal/adapter/location"
	"github.com/couchcryptid/place-picker/internal/adapter/mapbox"
	"github.com/couchcryptid/place-picker/internal/adapter/placesapi"
	"github.com/couchcryptid/place-picker/internal/catalog"
	"github.com/couchcryptid/place-picker/internal/config"
	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/couchcryptid/place-picker/internal/observability"
	"github.com/couchcryptid/place-picker/internal/picker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := placesapi.NewClient(cfg.PlacesAPIURL, cfg.PlacesAPITimeout, logger, metrics)

	var locator domain.Locator
	switch cfg.LocationProvider {
	case config.LocationMapbox:
		mb := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		locator = mapbox.NewLocator(mapbox.NewCachedGeocoder(mb, cfg.MapboxCacheSize, metrics), cfg.MapboxQuery)
		logger.Info("mapbox location enabled", "query", cfg.MapboxQuery, "cache_size", cfg.MapboxCacheSize)
	default:
		locator = location.NewStatic(domain.GeoCoordinate{Lat: cfg.LocationLat, Lon: cfg.LocationLon})
		logger.Info("static location", "lat", cfg.LocationLat, "lon", cfg.LocationLon)
	}

	var opts []picker.Option
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		opts = append(opts, picker.WithPublisher(publisher))
		logger.Info("change events enabled", "topic", cfg.KafkaTopic)
	}

	loader := catalog.NewLoader(client, locator, cfg.LocationTimeout, logger, metrics)
	workflow := picker.New(client, logger, metrics, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, loader, workflow, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Both loads run concurrently in the background.
	loader.Start(ctx)
	workflow.Start(ctx)

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
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
