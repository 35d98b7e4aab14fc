package redis

// Package redis provides Redis-backed adapters for per-device storage.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/educonnect/educonnect-web/internal/ports"
)

const defaultPrefix = "educonnect:device:"

// DeviceStorage keeps each device namespace in a Redis hash. Every write refreshes the
// hash TTL, so idle devices expire as a whole.
type DeviceStorage struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.DeviceStorage = (*DeviceStorage)(nil)

// DeviceStorageOptions configures a DeviceStorage.
type DeviceStorageOptions struct {
	Prefix string        // Optional: key prefix, defaults to "educonnect:device:"
	TTL    time.Duration // Optional: idle expiry; zero keeps keys forever
}

// NewDeviceStorage creates a Redis-backed device store.
func NewDeviceStorage(client redis.UniversalClient, opts DeviceStorageOptions) (*DeviceStorage, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	if opts.TTL < 0 {
		return nil, fmt.Errorf("ttl must not be negative, got %s", opts.TTL)
	}
	return &DeviceStorage{client: client, prefix: prefix, ttl: opts.TTL}, nil
}

// ForDevice returns the namespace for deviceID.
//
//nolint:ireturn // callers only depend on the storage port.
func (s *DeviceStorage) ForDevice(deviceID string) ports.DurableStorage {
	return &deviceHash{store: s, key: s.prefix + deviceID}
}

// Ping checks connectivity.
func (s *DeviceStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

type deviceHash struct {
	store *DeviceStorage
	key   string
}

func (h *deviceHash) GetItem(ctx context.Context, field string) (string, bool, error) {
	v, err := h.store.client.HGet(ctx, h.key, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis hget: %w", err)
	}
	return v, true, nil
}

func (h *deviceHash) SetItem(ctx context.Context, field, value string) error {
	_, err := h.store.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, h.key, field, value)
		if h.store.ttl > 0 {
			p.Expire(ctx, h.key, h.store.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (h *deviceHash) RemoveItem(ctx context.Context, field string) error {
	if err := h.store.client.HDel(ctx, h.key, field).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}
