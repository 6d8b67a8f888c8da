// Command genrecs generates mitigation recommendations for every zone via
// the generative text service and publishes a new recommendations snapshot.
// Zones whose generation fails are logged and skipped; the process exits
// non-zero only when the zones document cannot be read or the snapshot
// cannot be written.
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

	httpadapter "github.com/citybreath/mumbai-aqi-pipeline/internal/adapter/http"
	kafkaadapter "github.com/citybreath/mumbai-aqi-pipeline/internal/adapter/kafka"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/adapter/openai"
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

	client := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.GenerationTimeout, logger, metrics)
	generator := openai.NewSerializedClient(client, cfg.GenerationPause)

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

	job := pipeline.NewRecommendationGenerator(
		store, generator, notifier,
		domain.DefaultLandmarkCatalogue,
		logger, metrics, cfg.ZonePause,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := startMetricsServer(cfg, logger)
	defer stopMetricsServer(srv, logger)

	stats, err := job.Run(ctx)
	if err != nil {
		logger.Error("recommendation generation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("done",
		"zones", stats.Zones, "recommendations", stats.Recommendations, "skipped", stats.Skipped)
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
