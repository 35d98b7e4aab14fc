package ports

import "context"

// Storage keys shared by the session store and the verification flow.
const (
	KeyAuthToken           = "auth_token"
	KeyAuthState           = "auth:state"
	KeyPendingVerification = "pending_verification"
)

// DurableStorage is one browser's key/value namespace. It survives page reloads.
// GetItem reports found=false for missing keys rather than an error.
type DurableStorage interface {
	GetItem(ctx context.Context, key string) (value string, found bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// DeviceStorage hands out per-device namespaces from a shared backend.
type DeviceStorage interface {
	ForDevice(deviceID string) DurableStorage
	Ping(ctx context.Context) error
}
