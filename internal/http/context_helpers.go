package httpx

import (
	"context"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	"github.com/educonnect/educonnect-web/internal/session"
)

// Device is the per-request view of one browser's storage namespace.
type Device struct {
	ID      string
	Session *session.Store
	Pending *session.PendingStore
}

// ResolveKey identifies a profile resolution for this device and its current token.
func (d *Device) ResolveKey() string {
	return d.ID + ":" + d.Session.Token()
}

// deviceKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type deviceKey struct{}

// SetDeviceInContext returns a child context that carries the given device.
// If device is nil, the original ctx is returned unchanged.
func SetDeviceInContext(ctx context.Context, device *Device) context.Context {
	if device == nil {
		return ctx
	}
	return context.WithValue(ctx, deviceKey{}, device)
}

// GetDeviceFromContext returns the device from context and a boolean indicating presence.
func GetDeviceFromContext(ctx context.Context) (*Device, bool) {
	if d, ok := ctx.Value(deviceKey{}).(*Device); ok && d != nil {
		return d, true
	}
	return nil, false
}

// GetSessionFromContext returns a snapshot of the device's session, or the zero session
// when the request carries no device.
func GetSessionFromContext(ctx context.Context) domainauth.Session {
	if d, ok := GetDeviceFromContext(ctx); ok {
		return d.Session.Snapshot()
	}
	return domainauth.Session{}
}

// IsGuestUser reports whether the current request has no resolved user.
func IsGuestUser(ctx context.Context) bool {
	return !GetSessionFromContext(ctx).IsAuthenticated()
}
