package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/educonnect/educonnect-web/config"
	"github.com/educonnect/educonnect-web/internal/adapters/apiclient"
	"github.com/educonnect/educonnect-web/internal/observability/statsd"
	"github.com/educonnect/educonnect-web/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	API     *apiclient.Client
	Auth    *service.AuthService
	Storage *Storage
	Metrics *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config  *config.AppConfig
	Storage *Storage
	Metrics *statsd.Client // Optional: metrics are dropped when nil
	Logger  *slog.Logger
}

// NewServices wires the marketplace API client and the auth service.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.Storage == nil {
		return ServiceContainer{}, errors.New("services: config and storage are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api, err := apiclient.New(apiclient.Options{
		BaseURL: deps.Config.API.BaseURL,
		Timeout: deps.Config.API.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("api client: %w", err)
	}

	opts := service.AuthServiceOptions{
		API:           api,
		Logger:        logger,
		LogoutTimeout: deps.Config.API.LogoutTimeout,
	}
	if deps.Metrics != nil {
		opts.Metrics = deps.Metrics
	}
	auth, err := service.NewAuthService(opts)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("auth service: %w", err)
	}

	return ServiceContainer{
		API:     api,
		Auth:    auth,
		Storage: deps.Storage,
		Metrics: deps.Metrics,
	}, nil
}

// ServiceOrchestrationConfig contains what RunServicesWithShutdown starts.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown serves HTTP and runs the storage sweeper until ctx is cancelled,
// SIGINT/SIGTERM arrives or either fails, then shuts everything down gracefully.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := NewHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", server.Addr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", serveErr)
		}
		return nil
	})

	if sweeper := cfg.Services.Storage.sweeper(); sweeper != nil {
		g.Go(func() error {
			logger.InfoContext(gctx, "starting storage sweeper", "interval", cfg.Config.Storage.SweepInterval)
			return sweeper.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(gctx, "shutting down services...")
		return ShutdownHTTPServer(ShutdownConfig{
			Context: context.WithoutCancel(gctx),
			Server:  server,
			Timeout: cfg.Config.HTTP.ShutdownTimeout,
			Auth:    cfg.Services.Auth,
			Logger:  logger,
		})
	})

	return g.Wait()
}

func (s *Storage) sweeper() *service.StorageSweeper {
	if s == nil {
		return nil
	}
	return s.Sweeper
}
