package config

import (
	"log/slog"
	"strings"
)

const (
	defaultServiceName   = "educonnect-web"
	defaultMetricsPrefix = "educonnect"
)

// ObservabilityConfig groups configuration that controls logging and tracing.
type ObservabilityConfig struct {
	Logging LoggingConfig
	Tracing TracingConfig `envPrefix:"OTEL_"`
	Metrics MetricsConfig `envPrefix:"STATSD_"`
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Logging.Sanitize()
	c.Tracing.Sanitize()
	c.Metrics.Sanitize()
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Sanitize lowercases the level and falls back to info for unknown values.
func (c *LoggingConfig) Sanitize() {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Level = "info"
	}
}

// SlogLevel converts the configured level to a slog.Level.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TracingConfig controls OpenTelemetry trace export over OTLP/gRPC.
type TracingConfig struct {
	// Endpoint is the OTLP collector address (host:port). Tracing is disabled when empty.
	Endpoint    string `env:"EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool   `env:"EXPORTER_OTLP_INSECURE" envDefault:"false"`
	ServiceName string `env:"SERVICE_NAME"           envDefault:"educonnect-web"`
}

// Sanitize trims values and applies the default service name.
func (c *TracingConfig) Sanitize() {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.ServiceName = strings.TrimSpace(c.ServiceName); c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}
}

// IsEnabled returns true when an exporter endpoint is configured.
func (c TracingConfig) IsEnabled() bool {
	return c.Endpoint != ""
}

// MetricsConfig controls StatsD metric emission. Metrics are dropped when Address is empty.
type MetricsConfig struct {
	Address string `env:"ADDR"`
	Prefix  string `env:"PREFIX" envDefault:"educonnect"`
	// Tags are attached to every metric, e.g. STATSD_TAGS=env:prod,region:me.
	Tags map[string]string `env:"TAGS" envKeyValSeparator:":"`
}

// Sanitize trims values and applies the default prefix.
func (c *MetricsConfig) Sanitize() {
	c.Address = strings.TrimSpace(c.Address)
	if c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), "."); c.Prefix == "" {
		c.Prefix = defaultMetricsPrefix
	}
}

// IsEnabled returns true when a StatsD address is configured.
func (c MetricsConfig) IsEnabled() bool {
	return c.Address != ""
}
