package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "device_id", cfg.HTTP.DeviceCookieName)
	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, StorageBackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "educonnect:device:", cfg.Storage.KeyPrefix)
	assert.Equal(t, time.Hour, cfg.Storage.SweepInterval)
	assert.Equal(t, 1000, cfg.Storage.SweepBatchSize)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.False(t, cfg.Observability.Tracing.IsEnabled())
	assert.Equal(t, "educonnect-web", cfg.Observability.Tracing.ServiceName)
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/v1/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("STORAGE_TTL", "1h")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_CLUSTER_NODES", "a:6379,b:6379")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	assert.Equal(t, "https://api.example.com/v1", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, StorageBackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, time.Hour, cfg.Storage.TTL)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 6543, cfg.Postgres.Port)

	if !reflect.DeepEqual(cfg.Redis.ClusterNodes, []string{"a:6379", "b:6379"}) {
		t.Fatalf("unexpected cluster nodes: %#v", cfg.Redis.ClusterNodes)
	}

	expected := TracingConfig{
		Endpoint:    "collector:4317",
		Insecure:    true,
		ServiceName: "educonnect-web",
	}
	if !reflect.DeepEqual(cfg.Observability.Tracing, expected) {
		t.Fatalf("unexpected tracing configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Observability.Tracing)
	}
}

func TestStorageBackend_UnmarshalText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    StorageBackend
		expectError bool
	}{
		{name: "redis", input: "redis", expected: StorageBackendRedis},
		{name: "postgres mixed case", input: "PostGres", expected: StorageBackendPostgres},
		{name: "memory with spaces", input: " memory ", expected: StorageBackendMemory},
		{name: "unknown", input: "dynamo", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b StorageBackend
			err := b.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, b)
		})
	}
}

func TestHTTPConfig_SanitizeCookieDomain(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "localhost", expected: ""},
		{input: "com", expected: ""},
		{input: "co.uk", expected: ""},
		{input: ".educonnect.example.com", expected: "educonnect.example.com"},
		{input: "Example.COM", expected: "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h := HTTPConfig{CookieDomain: tt.input}
			h.Sanitize()
			assert.Equal(t, tt.expected, h.CookieDomain)
		})
	}
}

func TestHTTPConfig_SanitizeClampsCompression(t *testing.T) {
	h := HTTPConfig{CompressionLevel: 42}
	h.Sanitize()
	assert.Equal(t, 9, h.CompressionLevel)

	h = HTTPConfig{CompressionLevel: -1}
	h.Sanitize()
	assert.Equal(t, 1, h.CompressionLevel)
}

func TestLoggingConfig_SlogLevel(t *testing.T) {
	c := LoggingConfig{Level: " DEBUG "}
	c.Sanitize()
	assert.Equal(t, slog.LevelDebug, c.SlogLevel())

	c = LoggingConfig{Level: "verbose"}
	c.Sanitize()
	assert.Equal(t, "info", c.Level)
	assert.Equal(t, slog.LevelInfo, c.SlogLevel())
}

func TestAppConfig_DetectDevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	assert.True(t, cfg.IsDev)
}

func TestMetricsConfig(t *testing.T) {
	t.Setenv("STATSD_ADDR", " 127.0.0.1:8125 ")
	t.Setenv("STATSD_PREFIX", ".edu.")
	t.Setenv("STATSD_TAGS", "env:prod,region:me")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	m := cfg.Observability.Metrics
	assert.True(t, m.IsEnabled())
	assert.Equal(t, "127.0.0.1:8125", m.Address)
	assert.Equal(t, "edu", m.Prefix)
	assert.Equal(t, map[string]string{"env": "prod", "region": "me"}, m.Tags)

	var empty MetricsConfig
	empty.Sanitize()
	assert.False(t, empty.IsEnabled())
	assert.Equal(t, "educonnect", empty.Prefix)
}
