// Command updateaqi refreshes every zone's air-quality measurement from the
// upstream providers and publishes a new AQI snapshot. Zone-level failures
// fall back to previous or baseline data; the process exits non-zero only
// when the zones document cannot be read or the snapshot cannot be written.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/adapter/apininjas"
	httpadapter "github.com/citybreath/mumbai-aqi-pipeline/internal/adapter/http"
	kafkaadapter "github.com/citybreath/mumbai-aqi-pipeline/internal/adapter/kafka"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/adapter/openaq"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/adapter/snapshot"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/config"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/observability"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store := snapshot.NewStore(cfg.ZonesPath, cfg.DataDir, cfg.PublishDir, logger, metrics)

	// Primary provider needs a credential; without one the fetcher goes
	// straight to the keyless secondary.
	var primary domain.PrimaryProvider
	if cfg.AQIAPIKey != "" {
		primary = apininjas.NewClient(cfg.AQIAPIKey, cfg.ProviderTimeout, logger, metrics)
		logger.Info("primary provider enabled")
	} else {
		logger.Info("no AQI_API_KEY, primary provider disabled")
	}
	secondary := openaq.NewClient(cfg.ProviderTimeout, logger, metrics)
	fetcher := pipeline.NewFetcher(primary, secondary, logger)

	var notifier pipeline.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		n := kafkaadapter.NewNotifier(cfg.KafkaBrokers, cfg.KafkaNotifyTopic, logger)
		defer func() {
			if err := n.Close(); err != nil {
				logger.Error("kafka notifier close error", "error", err)
			}
		}()
		notifier = n
		logger.Info("snapshot notifications enabled", "topic", cfg.KafkaNotifyTopic)
	}

	updater := pipeline.NewAQIUpdater(store, fetcher, notifier, logger, metrics, cfg.BatchSize, cfg.BatchPause)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := startMetricsServer(cfg, logger)
	defer stopMetricsServer(srv, logger)

	stats, err := updater.Run(ctx)
	if err != nil {
		logger.Error("aqi update failed", "error", err)
		os.Exit(1)
	}
	logger.Info("done", "updated", stats.Updated, "failed", stats.Failed)
}

func startMetricsServer(cfg *config.Config, logger *slog.Logger) *httpadapter.Server {
	if cfg.HTTPAddr == "" {
		return nil
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	return srv
}

func stopMetricsServer(srv *httpadapter.Server, logger *slog.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
}
