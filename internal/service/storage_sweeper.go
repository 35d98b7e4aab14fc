package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ExpiredPurger deletes expired device storage rows in batches.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, batchSize int) (int64, error)
}

// StorageSweeperOptions groups dependencies for StorageSweeper.
type StorageSweeperOptions struct {
	Purger    ExpiredPurger // Required: storage backend with row-level expiry
	Interval  time.Duration // Required: time between sweeps
	BatchSize int           // Optional: rows per delete, defaults to 1000
	Logger    *slog.Logger  // Optional: structured logger
}

// StorageSweeper periodically removes expired device namespaces from backends that cannot
// expire keys on their own.
type StorageSweeper struct {
	purger    ExpiredPurger
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

// NewStorageSweeper constructs a new StorageSweeper.
func NewStorageSweeper(opts StorageSweeperOptions) (*StorageSweeper, error) {
	if opts.Purger == nil {
		return nil, errors.New("ExpiredPurger is required")
	}
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", opts.Interval)
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 1000
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageSweeper{
		purger:    opts.Purger,
		interval:  opts.Interval,
		batchSize: batch,
		logger:    logger.With("component", "storage_sweeper"),
	}, nil
}

// Run sweeps at the configured interval until ctx is cancelled.
// Returns nil on graceful shutdown.
func (s *StorageSweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting storage sweeper", "interval", s.interval)

	// Spread instances that start together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if _, err := s.Sweep(ctx); err != nil {
		s.logSweepError(ctx, err, "initial sweep")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "storage sweeper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logSweepError(ctx, err, "sweep")
			}
		}
	}
}

// Sweep deletes batches until one comes back empty and returns the total removed.
func (s *StorageSweeper) Sweep(ctx context.Context) (int64, error) {
	var total int64
	for {
		n, err := s.purger.PurgeExpired(ctx, s.batchSize)
		if err != nil {
			return total, err
		}
		total += n
		if n == 0 {
			break
		}
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}
	if total > 0 {
		s.logger.InfoContext(ctx, "purged expired device storage", "count", total)
	}
	return total, nil
}

// waitWithJitter delays up to 10% of the interval.
func (s *StorageSweeper) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func (s *StorageSweeper) logSweepError(ctx context.Context, err error, label string) {
	if isContextCancellation(err) {
		s.logger.DebugContext(ctx, label+" cancelled by context", "error", err)
		return
	}
	s.logger.ErrorContext(ctx, label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
