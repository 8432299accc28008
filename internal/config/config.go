package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// StorePath, when set, is where the normalized store snapshot is
	// persisted after each pass and loaded from at startup.
	StorePath string

	// RegistryPath, when set, overrides the built-in city-coordinate table.
	RegistryPath string

	// Aggregation settings.
	TopCrimes        int
	RecentYearWindow int

	// ZoneMaxRadiusKm bounds nearest-city matching; 0 means unbounded.
	ZoneMaxRadiusKm float64

	// Kafka ingestion (feature-flagged; the service also ingests via the
	// admin endpoint and the one-shot CLI without any broker).
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}
	topCrimes, err := parsePositiveInt("TOP_CRIMES", 5)
	if err != nil {
		return nil, err
	}
	recentWindow, err := parsePositiveInt("RECENT_YEAR_WINDOW", 2)
	if err != nil {
		return nil, err
	}
	maxRadius, err := parseRadius()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StorePath:    os.Getenv("STORE_PATH"),
		RegistryPath: os.Getenv("REGISTRY_PATH"),

		TopCrimes:        topCrimes,
		RecentYearWindow: recentWindow,
		ZoneMaxRadiusKm:  maxRadius,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "raw-crime-exports"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "normalized-crime-records"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "crime-zone-api"),
		BatchFlushInterval: flushInterval,
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SOURCE_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseRadius() (float64, error) {
	s := os.Getenv("ZONE_MAX_RADIUS_KM")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, errors.New("invalid ZONE_MAX_RADIUS_KM")
	}
	return v, nil
}
