package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler returns 200 when device storage answers, 503 otherwise.
// GET|HEAD /healthz.
func healthHandler(storage Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, map[string]string{"status": "ok"}
		if storage != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := storage.Ping(ctx); err != nil {
				logger.WarnContext(r.Context(), "health check: storage unreachable", "error", err)
				status, body = http.StatusServiceUnavailable, map[string]string{"status": "degraded", "storage": "unreachable"}
			}
		}
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			return
		}
		WriteJSON(w, status, body)
	}
}
