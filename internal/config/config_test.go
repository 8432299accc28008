package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.StorePath)
	assert.Empty(t, cfg.RegistryPath)
	assert.Equal(t, 5, cfg.TopCrimes)
	assert.Equal(t, 2, cfg.RecentYearWindow)
	assert.Equal(t, 0.0, cfg.ZoneMaxRadiusKm)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "raw-crime-exports", cfg.KafkaSourceTopic)
	assert.Equal(t, "normalized-crime-records", cfg.KafkaSinkTopic)
	assert.Equal(t, "crime-zone-api", cfg.KafkaGroupID)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("STORE_PATH", "/var/lib/crime-zone/store.json")
	t.Setenv("TOP_CRIMES", "3")
	t.Setenv("RECENT_YEAR_WINDOW", "5")
	t.Setenv("ZONE_MAX_RADIUS_KM", "150.5")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/var/lib/crime-zone/store.json", cfg.StorePath)
	assert.Equal(t, 3, cfg.TopCrimes)
	assert.Equal(t, 5, cfg.RecentYearWindow)
	assert.Equal(t, 150.5, cfg.ZoneMaxRadiusKm)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "never", "SHUTDOWN_TIMEOUT"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-5s", "SHUTDOWN_TIMEOUT"},
		{"bad flush interval", "BATCH_FLUSH_INTERVAL", "soon", "BATCH_FLUSH_INTERVAL"},
		{"zero top crimes", "TOP_CRIMES", "0", "TOP_CRIMES"},
		{"non-numeric top crimes", "TOP_CRIMES", "five", "TOP_CRIMES"},
		{"negative recent window", "RECENT_YEAR_WINDOW", "-1", "RECENT_YEAR_WINDOW"},
		{"negative radius", "ZONE_MAX_RADIUS_KM", "-10", "ZONE_MAX_RADIUS_KM"},
		{"non-numeric radius", "ZONE_MAX_RADIUS_KM", "far", "ZONE_MAX_RADIUS_KM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_KafkaEnabledRequiresBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}
