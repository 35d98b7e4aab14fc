package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	educonnect "github.com/educonnect/educonnect-web"
	"github.com/educonnect/educonnect-web/config"
	httpx "github.com/educonnect/educonnect-web/internal/http"
	"github.com/educonnect/educonnect-web/internal/service"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the router over the embedded templates and static assets and
// returns an unstarted server.
func NewHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, errors.New("http server: config is required")
	}
	if cfg.Services.Auth == nil || cfg.Services.API == nil || cfg.Services.Storage == nil {
		return nil, errors.New("http server: auth, api and storage services are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := fs.Sub(educonnect.TemplateFS, "web/templates")
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	static, err := fs.Sub(educonnect.StaticFS, "web/static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	appCfg := cfg.Config
	services := httpx.RouterServices{
		Auth:               cfg.Services.Auth,
		Catalog:            cfg.Services.API,
		Storage:            cfg.Services.Storage.Devices,
		TemplateFS:         templates,
		StaticFS:           static,
		CookieDomain:       appCfg.HTTP.CookieDomain,
		DeviceCookieName:   appCfg.HTTP.DeviceCookieName,
		DeviceCookieMaxAge: appCfg.HTTP.DeviceCookieMaxAge,
		CompressionEnabled: appCfg.HTTP.CompressionEnabled,
		CompressionLevel:   appCfg.HTTP.CompressionLevel,
		IsDev:              appCfg.IsDev,
		Logger:             logger,
	}
	if cfg.Services.Metrics != nil {
		services.Metrics = cfg.Services.Metrics
	}

	handler, err := buildHTTPHandler(services, appCfg.Observability.Tracing.ServiceName)
	if err != nil {
		return nil, err
	}
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
	}
	return newServer(handler, appCfg.HTTP.Addr), nil
}

func buildHTTPHandler(services httpx.RouterServices, operation string) (http.Handler, error) {
	router, err := httpx.NewRouter(services)
	if err != nil {
		return nil, err
	}
	// Order: otel -> Recover -> Logging -> Compression -> CSRF -> Device -> Guard -> routes
	return otelhttp.NewHandler(router, operation), nil
}

func newServer(handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	// Auth is drained after the server stops so detached remote logouts can finish.
	Auth   *service.AuthService
	Logger *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if cfg.Auth != nil {
		cfg.Auth.Wait()
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "HTTP server stopped")
	}

	return nil
}
