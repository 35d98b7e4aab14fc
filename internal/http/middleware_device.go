package httpx

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/educonnect/educonnect-web/internal/ports"
	"github.com/educonnect/educonnect-web/internal/session"
)

const (
	// DefaultDeviceCookieName is the cookie that names a browser's storage namespace.
	DefaultDeviceCookieName = "device_id"
	defaultDeviceCookieAge  = 365 * 24 * time.Hour
)

// DeviceConfig configures the DeviceSession middleware.
type DeviceConfig struct {
	Storage      ports.DeviceStorage // Required
	CookieName   string
	CookieDomain string
	MaxAge       time.Duration
	Logger       *slog.Logger
}

// DeviceSession identifies the browser by its device cookie, issuing a new identifier when
// the cookie is missing or malformed, and hydrates the device's session store before the
// handler runs. Static assets and health checks skip the lookup.
func DeviceSession(cfg DeviceConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultDeviceCookieName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultDeviceCookieAge
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipsDevice(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			id := deviceIDFromRequest(r, cfg.CookieName)
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    id,
					Path:     "/",
					Domain:   cfg.CookieDomain,
					HttpOnly: true,
					Secure:   isSecureRequest(r),
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(cfg.MaxAge.Seconds()),
				})
			}

			ns := cfg.Storage.ForDevice(id)
			device := &Device{
				ID:      id,
				Session: session.NewStore(ns, logger),
				Pending: session.NewPendingStore(ns, logger),
			}
			device.Session.Load(r.Context())

			next.ServeHTTP(w, r.WithContext(SetDeviceInContext(r.Context(), device)))
		})
	}
}

func skipsDevice(path string) bool {
	return strings.HasPrefix(path, "/static/") || path == "/healthz" || path == "/favicon.ico"
}

// deviceIDFromRequest returns the cookie value when it is a well-formed UUID.
func deviceIDFromRequest(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return ""
	}
	return id.String()
}
