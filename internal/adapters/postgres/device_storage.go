// Package postgres provides a PostgreSQL-backed DeviceStorage.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/educonnect/educonnect-web/internal/errors"
	"github.com/educonnect/educonnect-web/internal/ports"
)

// DeviceStorage stores device namespaces as rows of the device_storage table.
type DeviceStorage struct {
	DB  *sql.DB
	ttl time.Duration
	now func() time.Time
}

var _ ports.DeviceStorage = (*DeviceStorage)(nil)

// DeviceStorageOptions configures a DeviceStorage.
type DeviceStorageOptions struct {
	// TTL sets expires_at on every write. Zero stores rows without expiry.
	TTL time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
}

// NewDeviceStorage creates a Postgres-backed device store. The schema is created by
// the migrate package.
func NewDeviceStorage(db *sql.DB, opts DeviceStorageOptions) (*DeviceStorage, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &DeviceStorage{DB: db, ttl: opts.TTL, now: now}, nil
}

// ForDevice returns the namespace for deviceID.
//
//nolint:ireturn // callers only depend on the storage port.
func (s *DeviceStorage) ForDevice(deviceID string) ports.DurableStorage {
	return &deviceRows{store: s, deviceID: deviceID}
}

// Ping checks connectivity.
func (s *DeviceStorage) Ping(ctx context.Context) error {
	return apperrors.MapDBError(s.DB.PingContext(ctx))
}

// PurgeExpired deletes up to batchSize expired rows and reports how many were removed.
func (s *DeviceStorage) PurgeExpired(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		return 0, errors.New("batch size must be positive")
	}
	const query = `
		DELETE FROM device_storage
		WHERE ctid IN (
			SELECT ctid FROM device_storage
			WHERE expires_at IS NOT NULL AND expires_at <= $1
			LIMIT $2
		)`
	res, err := s.DB.ExecContext(ctx, query, s.now().UTC(), batchSize)
	if err != nil {
		return 0, fmt.Errorf("purge expired device storage: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired rows affected: %w", err)
	}
	return n, nil
}

func (s *DeviceStorage) expiresAt() sql.NullTime {
	if s.ttl <= 0 {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: s.now().Add(s.ttl).UTC(), Valid: true}
}

type deviceRows struct {
	store    *DeviceStorage
	deviceID string
}

func (d *deviceRows) GetItem(ctx context.Context, key string) (string, bool, error) {
	const query = `
		SELECT value FROM device_storage
		WHERE device_id = $1 AND key = $2
		  AND (expires_at IS NULL OR expires_at > $3)`

	var value string
	err := d.store.DB.QueryRowContext(ctx, query, d.deviceID, key, d.store.now().UTC()).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get device item %q: %w", key, apperrors.MapDBError(err))
	}
	return value, true, nil
}

func (d *deviceRows) SetItem(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO device_storage (device_id, key, value, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (device_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`

	if _, err := d.store.DB.ExecContext(ctx, query,
		d.deviceID, key, value, d.store.now().UTC(), d.store.expiresAt()); err != nil {
		return fmt.Errorf("set device item %q: %w", key, apperrors.MapDBError(err))
	}
	return nil
}

func (d *deviceRows) RemoveItem(ctx context.Context, key string) error {
	const query = `DELETE FROM device_storage WHERE device_id = $1 AND key = $2`
	if _, err := d.store.DB.ExecContext(ctx, query, d.deviceID, key); err != nil {
		return fmt.Errorf("remove device item %q: %w", key, apperrors.MapDBError(err))
	}
	return nil
}
