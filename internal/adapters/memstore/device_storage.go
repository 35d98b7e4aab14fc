// Package memstore provides an in-process DeviceStorage used in development and tests.
package memstore

import (
	"context"
	"sync"

	"github.com/educonnect/educonnect-web/internal/ports"
)

// DeviceStorage keeps every device namespace in memory. Contents are lost on restart.
type DeviceStorage struct {
	mu      sync.RWMutex
	devices map[string]map[string]string
}

var _ ports.DeviceStorage = (*DeviceStorage)(nil)

// NewDeviceStorage creates an empty store.
func NewDeviceStorage() *DeviceStorage {
	return &DeviceStorage{devices: make(map[string]map[string]string)}
}

// ForDevice returns the namespace for deviceID.
//
//nolint:ireturn // callers only depend on the storage port.
func (s *DeviceStorage) ForDevice(deviceID string) ports.DurableStorage {
	return &deviceNamespace{store: s, deviceID: deviceID}
}

// Ping always succeeds.
func (s *DeviceStorage) Ping(context.Context) error { return nil }

// Len reports the number of devices holding at least one key.
func (s *DeviceStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}

type deviceNamespace struct {
	store    *DeviceStorage
	deviceID string
}

func (n *deviceNamespace) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()
	v, ok := n.store.devices[n.deviceID][key]
	return v, ok, nil
}

func (n *deviceNamespace) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.store.mu.Lock()
	defer n.store.mu.Unlock()
	items, ok := n.store.devices[n.deviceID]
	if !ok {
		items = make(map[string]string)
		n.store.devices[n.deviceID] = items
	}
	items[key] = value
	return nil
}

func (n *deviceNamespace) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.store.mu.Lock()
	defer n.store.mu.Unlock()
	items, ok := n.store.devices[n.deviceID]
	if !ok {
		return nil
	}
	delete(items, key)
	if len(items) == 0 {
		delete(n.store.devices, n.deviceID)
	}
	return nil
}
