package main

import (
	"context"
	"fmt"
	"log/slog"

	kafkaadapter "github.com/couchcryptid/fatality-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/fatality-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/fatality-map-service/internal/config"
	"github.com/couchcryptid/fatality-map-service/internal/dataset"
	"github.com/couchcryptid/fatality-map-service/internal/mapview"
	"github.com/couchcryptid/fatality-map-service/internal/observability"
)

// app holds the wired service and whatever must be closed on exit.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	svc     *mapview.Service
	writer  *kafkaadapter.Writer
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	view, err := config.LoadMapView(cfg.MapViewFile)
	if err != nil {
		return nil, err
	}

	var loader dataset.Loader
	if cfg.DatasetURL != "" {
		loader = dataset.NewHTTPLoader(cfg.DatasetURL, cfg.DatasetTimeout)
		logger.Info("dataset source", "url", cfg.DatasetURL)
	} else {
		loader = dataset.NewFileLoader(cfg.DatasetPath)
		logger.Info("dataset source", "path", cfg.DatasetPath)
	}

	a := &app{cfg: cfg, logger: logger, metrics: metrics}
	var opts []mapview.Option

	// Geocoding fallback is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mapview.WithGeocoder(geocoder))
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	if cfg.KafkaEnabled {
		a.writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, mapview.WithLayerSink(a.writer))
		logger.Info("layer publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaLayerTopic)
	}

	a.svc = mapview.NewService(loader, view, logger, metrics, opts...)
	return a, nil
}

// loadDataset runs one load bounded by the dataset timeout.
func (a *app) loadDataset(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.DatasetTimeout)
	defer cancel()
	return a.svc.Load(ctx)
}

func (a *app) close() {
	if a.writer == nil {
		return
	}
	if err := a.writer.Close(); err != nil {
		a.logger.Error("kafka writer close error", "error", err)
	}
}
