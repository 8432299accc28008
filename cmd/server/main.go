// Command server runs the crime-zone API: it serves the per-city risk and
// zone-alert endpoints over the current store snapshot and, when Kafka is
// enabled, consumes raw records-bureau exports from the source topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/crime-zone-api/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/crime-zone-api/internal/adapter/kafka"
	"github.com/couchcryptid/crime-zone-api/internal/config"
	"github.com/couchcryptid/crime-zone-api/internal/observability"
	"github.com/couchcryptid/crime-zone-api/internal/pipeline"
	"github.com/couchcryptid/crime-zone-api/internal/risk"
	"github.com/couchcryptid/crime-zone-api/internal/store"
	"github.com/couchcryptid/crime-zone-api/internal/zone"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	st := store.New()
	if cfg.StorePath != "" {
		if err := st.LoadFile(cfg.StorePath); err != nil {
			// A missing snapshot just means a cold start; ingestion will
			// populate the store.
			logger.Warn("no store snapshot loaded", "path", cfg.StorePath, "error", err)
		} else {
			logger.Info("store snapshot loaded", "path", cfg.StorePath, "records", st.Len())
		}
	}

	registry := zone.DefaultRegistry()
	if cfg.RegistryPath != "" {
		registry, err = zone.LoadRegistry(cfg.RegistryPath)
		if err != nil {
			logger.Error("failed to load coordinate registry", "path", cfg.RegistryPath, "error", err)
			os.Exit(1)
		}
	}

	engine := risk.NewEngine(st, cfg.TopCrimes, cfg.RecentYearWindow)
	resolver := zone.NewResolver(registry, st, engine, cfg.ZoneMaxRadiusKm)

	var (
		reader    *kafkaadapter.Reader
		writer    *kafkaadapter.Writer
		extractor pipeline.ExportExtractor
		publisher pipeline.RecordPublisher
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		extractor, publisher = reader, writer
		logger.Info("kafka ingestion enabled",
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	} else {
		logger.Info("kafka ingestion disabled")
	}

	p := pipeline.New(st, extractor, publisher, logger, metrics, cfg.StorePath, 10)

	srv := httpapi.NewServer(cfg.HTTPAddr, st, engine, resolver, p, p, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if cfg.KafkaEnabled {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("ingestion loop error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
