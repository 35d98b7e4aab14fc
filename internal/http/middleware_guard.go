package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	"github.com/educonnect/educonnect-web/internal/domain/guard"
	apperrors "github.com/educonnect/educonnect-web/internal/errors"
	"github.com/educonnect/educonnect-web/internal/observability/metrics"
	"github.com/educonnect/educonnect-web/internal/observability/statsd"
	"github.com/educonnect/educonnect-web/internal/session"
)

// ProfileResolver resolves the user behind a stored token. Concurrent calls sharing a key
// share one upstream fetch.
type ProfileResolver interface {
	ResolveProfile(ctx context.Context, key string, store *session.Store) (*domainauth.User, error)
}

// GuardConfig configures the Guard middleware.
type GuardConfig struct {
	Routes   *guard.RouteTable // Optional: defaults to guard.DefaultRoutes()
	Resolver ProfileResolver   // Required
	Pages    *pages
	Metrics  statsd.Sink // Optional: counts decisions by outcome
	Logger   *slog.Logger
}

// Guard enforces the route table for every request that carries a device:
//   - Redirect sends browsers to /login?redirect_uri=<path> (JSON clients get 401)
//   - Loading resolves the profile once, then re-evaluates
//   - a rejected or expired token clears the session and redirects to login
//   - an unreachable API renders the 503 loading view and keeps the session
//   - Unauthorized renders the 403 view
func Guard(cfg GuardConfig) func(http.Handler) http.Handler {
	routes := cfg.Routes
	if routes == nil {
		routes = guard.DefaultRoutes()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			device, ok := GetDeviceFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			in := guard.Input{
				Session:     device.Session.Snapshot(),
				Requirement: routes.Lookup(r.URL.Path),
				Path:        r.URL.Path,
			}
			decision := guard.Evaluate(in)

			if decision.Outcome == guard.Loading {
				if _, err := cfg.Resolver.ResolveProfile(r.Context(), device.ResolveKey(), device.Session); err != nil {
					if apperrors.IsSessionInvalid(err) {
						logger.InfoContext(r.Context(), "session invalidated", "path", r.URL.Path, "error", err)
						metrics.EmitGuard(cfg.Metrics, guard.Redirect.String())
						redirectToLogin(w, r)
						return
					}
					logger.WarnContext(r.Context(), "profile resolution failed", "path", r.URL.Path, "error", err)
					metrics.EmitGuard(cfg.Metrics, guard.Loading.String())
					cfg.Pages.loading(w, r, err)
					return
				}
				in.Session = device.Session.Snapshot()
				decision = guard.Evaluate(in)
			}

			metrics.EmitGuard(cfg.Metrics, decision.Outcome.String())
			switch decision.Outcome {
			case guard.Redirect:
				redirectToLogin(w, r)
			case guard.Unauthorized:
				logger.InfoContext(r.Context(), "access denied",
					"path", r.URL.Path,
					"role", string(in.Session.Role()),
				)
				cfg.Pages.notAuthorized(w, r)
			case guard.Loading:
				// Resolution succeeded without yielding a user.
				cfg.Pages.loading(w, r, apperrors.Internal("We could not load your profile. Please try again."))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
