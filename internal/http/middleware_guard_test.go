package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	apperrors "github.com/educonnect/educonnect-web/internal/errors"
	"github.com/educonnect/educonnect-web/internal/session"
	"github.com/educonnect/educonnect-web/internal/testutil"
)

type resolverFunc func(ctx context.Context, key string, store *session.Store) (*domainauth.User, error)

func (f resolverFunc) ResolveProfile(ctx context.Context, key string, store *session.Store) (*domainauth.User, error) {
	return f(ctx, key, store)
}

func failResolver(t *testing.T) ProfileResolver {
	return resolverFunc(func(context.Context, string, *session.Store) (*domainauth.User, error) {
		t.Fatal("resolver must not be called")
		return nil, nil
	})
}

func runGuard(t *testing.T, resolver ProfileResolver, device *Device, path, accept string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	h := Guard(GuardConfig{Resolver: resolver, Pages: newTestPages(t), Logger: discardLogger()})(next)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if device != nil {
		req = req.WithContext(SetDeviceInContext(req.Context(), device))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, reached
}

func TestGuard_PassesThroughWithoutDevice(t *testing.T) {
	_, reached := runGuard(t, failResolver(t), nil, "/settings", "")
	assert.True(t, reached)
}

func TestGuard_PublicRouteRenders(t *testing.T) {
	_, reached := runGuard(t, failResolver(t), newTestDevice("d"), "/about", "")
	assert.True(t, reached)
}

func TestGuard_GuestRedirectsToLogin(t *testing.T) {
	rec, reached := runGuard(t, failResolver(t), newTestDevice("d"), "/settings/privacy?tab=1", "")
	assert.False(t, reached)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fsettings%2Fprivacy%3Ftab%3D1", rec.Header().Get("Location"))
}

func TestGuard_GuestJSONGets401(t *testing.T) {
	rec, _ := runGuard(t, failResolver(t), newTestDevice("d"), "/profile", "application/json")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication_required")
}

func TestGuard_ResolvedUserWithRole(t *testing.T) {
	tests := []struct {
		name        string
		role        domainauth.Role
		path        string
		wantReached bool
		wantStatus  int
	}{
		{name: "student any-user route", role: domainauth.RoleStudent, path: "/bookings", wantReached: true, wantStatus: http.StatusOK},
		{name: "student admin route", role: domainauth.RoleStudent, path: "/disputes", wantStatus: http.StatusForbidden},
		{name: "admin admin route", role: domainauth.RoleAdmin, path: "/disputes", wantReached: true, wantStatus: http.StatusOK},
		{name: "unknown role admin route", role: domainauth.RoleUnknown, path: "/users", wantStatus: http.StatusForbidden},
		{name: "unknown role any-user route", role: domainauth.RoleUnknown, path: "/profile", wantReached: true, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := newTestDevice("d")
			require.NoError(t, device.Session.Set(context.Background(), "tok", testutil.NewUser().WithRole(tt.role).Build()))

			rec, reached := runGuard(t, failResolver(t), device, tt.path, "")
			assert.Equal(t, tt.wantReached, reached)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGuard_ResolvesTokenOnlySession(t *testing.T) {
	device := newTestDevice("dev-9")
	require.NoError(t, device.Session.Set(context.Background(), "tok", nil))

	var gotKey string
	resolver := resolverFunc(func(ctx context.Context, key string, store *session.Store) (*domainauth.User, error) {
		gotKey = key
		u := testutil.NewUser().WithRole(domainauth.RoleAdmin).Build()
		require.NoError(t, store.Set(ctx, store.Token(), u))
		return u, nil
	})

	rec, reached := runGuard(t, resolver, device, "/users", "")
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev-9:tok", gotKey)
}

func TestGuard_ResolutionFailures(t *testing.T) {
	t.Run("invalid session redirects", func(t *testing.T) {
		device := newTestDevice("d")
		require.NoError(t, device.Session.Set(context.Background(), "tok", nil))
		resolver := resolverFunc(func(ctx context.Context, _ string, store *session.Store) (*domainauth.User, error) {
			require.NoError(t, store.Clear(ctx))
			return nil, apperrors.SessionInvalid(errors.New("rejected"))
		})

		rec, reached := runGuard(t, resolver, device, "/profile", "")
		assert.False(t, reached)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?redirect_uri=%2Fprofile", rec.Header().Get("Location"))
	})

	t.Run("unavailable renders loading", func(t *testing.T) {
		device := newTestDevice("d")
		require.NoError(t, device.Session.Set(context.Background(), "tok", nil))
		resolver := resolverFunc(func(context.Context, string, *session.Store) (*domainauth.User, error) {
			return nil, apperrors.Wrap(&apperrors.NetworkError{Op: "GET /auth/profile", Err: context.DeadlineExceeded},
				apperrors.ErrCodeUnavailable, "We could not load your profile. Please try again.")
		})

		rec, reached := runGuard(t, resolver, device, "/profile", "")
		assert.False(t, reached)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "We could not load your profile")
		assert.Equal(t, "tok", device.Session.Token())
	})

	t.Run("resolution without user stays loading", func(t *testing.T) {
		device := newTestDevice("d")
		require.NoError(t, device.Session.Set(context.Background(), "tok", nil))
		resolver := resolverFunc(func(context.Context, string, *session.Store) (*domainauth.User, error) {
			return nil, nil
		})

		rec, reached := runGuard(t, resolver, device, "/profile", "application/json")
		assert.False(t, reached)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "profile_unavailable")
	})
}

type outcomeSink struct{ outcomes []string }

func (s *outcomeSink) Count(_ string, _ int64, tags map[string]string) {
	s.outcomes = append(s.outcomes, tags["outcome"])
}

func (s *outcomeSink) Timing(string, time.Duration, map[string]string) {}

func TestGuard_CountsDecisions(t *testing.T) {
	sink := &outcomeSink{}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Guard(GuardConfig{
		Resolver: failResolver(t),
		Pages:    newTestPages(t),
		Metrics:  sink,
		Logger:   discardLogger(),
	})(next)

	for _, path := range []string{"/about", "/settings"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(SetDeviceInContext(req.Context(), newTestDevice("d")))
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, []string{"render", "redirect"}, sink.outcomes)
}
