package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/educonnect/educonnect-web/config"
	"github.com/educonnect/educonnect-web/internal/adapters/memstore"
	"github.com/educonnect/educonnect-web/internal/adapters/postgres"
	redisstore "github.com/educonnect/educonnect-web/internal/adapters/redis"
	"github.com/educonnect/educonnect-web/internal/ports"
	"github.com/educonnect/educonnect-web/internal/service"
)

// Storage is the device storage backend selected by configuration, plus the connections
// and background sweeper it owns.
type Storage struct {
	Devices ports.DeviceStorage
	Backend config.StorageBackend
	// Sweeper purges expired Postgres rows; nil for other backends or when disabled.
	Sweeper *service.StorageSweeper

	db    *sql.DB
	redis redis.UniversalClient
}

// OpenStorage connects the configured backend. Callers must Close the result.
func OpenStorage(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Storage, error) {
	if cfg == nil {
		return nil, errors.New("storage: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Storage.Backend {
	case config.StorageBackendMemory:
		logger.WarnContext(ctx, "using in-memory device storage; sessions are lost on restart")
		return &Storage{Devices: memstore.NewDeviceStorage(), Backend: config.StorageBackendMemory}, nil

	case config.StorageBackendPostgres:
		return openPostgresStorage(ctx, cfg, logger)

	default:
		client, err := ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		devices, err := redisstore.NewDeviceStorage(client, redisstore.DeviceStorageOptions{
			Prefix: cfg.Storage.KeyPrefix,
			TTL:    cfg.Storage.TTL,
		})
		if err != nil {
			return nil, errors.Join(err, client.Close())
		}
		return &Storage{Devices: devices, Backend: config.StorageBackendRedis, redis: client}, nil
	}
}

func openPostgresStorage(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Storage, error) {
	db, err := ConnectPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if cfg.Postgres.RunMigrationsOnStart {
		if err = RunMigrations(ctx, db, logger); err != nil {
			return nil, errors.Join(err, db.Close())
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	devices, err := postgres.NewDeviceStorage(db, postgres.DeviceStorageOptions{TTL: cfg.Storage.TTL})
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	st := &Storage{Devices: devices, Backend: config.StorageBackendPostgres, db: db}
	if cfg.Storage.TTL > 0 && cfg.Storage.SweepInterval > 0 {
		st.Sweeper, err = service.NewStorageSweeper(service.StorageSweeperOptions{
			Purger:    devices,
			Interval:  cfg.Storage.SweepInterval,
			BatchSize: cfg.Storage.SweepBatchSize,
			Logger:    logger,
		})
		if err != nil {
			return nil, errors.Join(err, db.Close())
		}
	}
	return st, nil
}

// Close releases the backend connections.
func (s *Storage) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
