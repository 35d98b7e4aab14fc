package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/educonnect/educonnect-web/config"
	"github.com/educonnect/educonnect-web/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "load config failed", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}

	logger := bootstrap.InitLogger(cfg.Observability.Logging)
	if err = run(ctx, &cfg, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	logStartupInfo(ctx, logger, cfg)

	shutdownTracing, err := bootstrap.InitTracing(ctx, cfg.Observability.Tracing, logger)
	if err != nil {
		logger.WarnContext(ctx, "tracing disabled", "error", err)
	}
	defer func() {
		if terr := shutdownTracing(context.WithoutCancel(ctx)); terr != nil {
			logger.ErrorContext(ctx, "flush traces failed", "error", terr)
		}
	}()

	metrics := bootstrap.NewMetricsClient(cfg.Observability.Metrics, logger)
	defer func() {
		if cerr := metrics.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close statsd client failed", "error", cerr)
		}
	}()

	storage, err := bootstrap.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close storage failed", "error", cerr)
		}
	}()

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:  cfg,
		Storage: storage,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunServicesWithShutdown(ctx, &bootstrap.ServiceOrchestrationConfig{
		Config:   cfg,
		Services: services,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting educonnect web",
		"addr", cfg.HTTP.Addr,
		"api_base_url", cfg.API.BaseURL,
		"storage_backend", string(cfg.Storage.Backend),
		"dev", cfg.IsDev,
		"tracing", cfg.Observability.Tracing.IsEnabled(),
		"metrics", cfg.Observability.Metrics.IsEnabled(),
	)
}
