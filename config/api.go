package config

import (
	"strings"
	"time"
)

// DefaultAPIBaseURL is the production marketplace API root.
const DefaultAPIBaseURL = "https://portal.ewan-geniuses.com/api"

// APIConfig contains configuration for the remote marketplace API client.
type APIConfig struct {
	// BaseURL is the API root; endpoint paths are appended to it.
	BaseURL string `env:"BASE_URL" envDefault:"https://portal.ewan-geniuses.com/api"`

	// Timeout bounds each outbound request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// LogoutTimeout bounds the detached remote logout call.
	LogoutTimeout time.Duration `env:"LOGOUT_TIMEOUT" envDefault:"5s"`
}

// Sanitize normalises the base URL and enforces positive timeouts.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultAPIBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.LogoutTimeout <= 0 {
		c.LogoutTimeout = 5 * time.Second
	}
}
