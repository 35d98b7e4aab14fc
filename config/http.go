package config

import (
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the public base URL of the application (e.g., "https://educonnect.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for the device cookie.
	// Leave empty to use the request domain. Public suffixes (e.g. "co.uk") are rejected.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// DeviceCookieName names the cookie that identifies a browser's storage namespace.
	DeviceCookieName string `env:"APP_DEVICE_COOKIE" envDefault:"device_id"`

	// DeviceCookieMaxAge bounds how long a browser keeps its device identifier.
	DeviceCookieMaxAge time.Duration `env:"APP_DEVICE_COOKIE_MAX_AGE" envDefault:"8760h"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// CompressionEnabled enables gzip compression for text-based responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}

	h.DeviceCookieName = strings.TrimSpace(h.DeviceCookieName)
	if h.DeviceCookieName == "" {
		h.DeviceCookieName = "device_id"
	}
	if h.DeviceCookieMaxAge <= 0 {
		h.DeviceCookieMaxAge = 365 * 24 * time.Hour
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}

	h.CookieDomain = sanitizeCookieDomain(h.CookieDomain)
}

// sanitizeCookieDomain drops domains that browsers would refuse to scope a cookie to.
func sanitizeCookieDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, ".")
	if d == "" || d == "localhost" {
		return ""
	}
	if suffix, _ := publicsuffix.PublicSuffix(d); suffix == d {
		return ""
	}
	return d
}
