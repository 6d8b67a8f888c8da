package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all settings for both batch jobs, populated from environment
// variables (and an optional .env file, since the jobs are operator-invoked).
type Config struct {
	ZonesPath  string
	DataDir    string
	PublishDir string
	HTTPAddr   string // metrics endpoint while a job runs; empty disables
	LogLevel   string
	LogFormat  string

	// Measurement ingestion.
	AQIAPIKey       string
	ProviderTimeout time.Duration
	BatchSize       int
	BatchPause      time.Duration

	// Recommendation generation.
	OpenAIAPIKey      string
	OpenAIModel       string
	GenerationTimeout time.Duration
	GenerationPause   time.Duration
	ZonePause         time.Duration

	// Optional snapshot-published notifications.
	KafkaBrokers     []string
	KafkaNotifyTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first if
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	providerTimeout, err := envDuration("PROVIDER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	batchPause, err := envDuration("BATCH_PAUSE", 2*time.Second)
	if err != nil {
		return nil, err
	}
	generationTimeout, err := envDuration("GENERATION_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	generationPause, err := envDuration("GENERATION_PAUSE", 100*time.Millisecond)
	if err != nil {
		return nil, err
	}
	zonePause, err := envDuration("ZONE_PAUSE", 2*time.Second)
	if err != nil {
		return nil, err
	}
	batchSize, err := envInt("BATCH_SIZE", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ZonesPath:  envOrDefault("ZONES_PATH", "data/zones.json"),
		DataDir:    envOrDefault("DATA_DIR", "data"),
		PublishDir: envOrDefault("PUBLISH_DIR", "client/public/data"),
		HTTPAddr:   os.Getenv("HTTP_ADDR"),
		LogLevel:   envOrDefault("LOG_LEVEL", "info"),
		LogFormat:  envOrDefault("LOG_FORMAT", "json"),

		AQIAPIKey:       os.Getenv("AQI_API_KEY"),
		ProviderTimeout: providerTimeout,
		BatchSize:       batchSize,
		BatchPause:      batchPause,

		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       envOrDefault("OPENAI_MODEL", "gpt-4.1-mini"),
		GenerationTimeout: generationTimeout,
		GenerationPause:   generationPause,
		ZonePause:         zonePause,

		KafkaBrokers:     parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaNotifyTopic: envOrDefault("KAFKA_NOTIFY_TOPIC", "snapshot-published"),
	}

	if cfg.ZonesPath == "" {
		return nil, errors.New("ZONES_PATH is required")
	}
	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("BATCH_SIZE must be positive")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaNotifyTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_NOTIFY_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
