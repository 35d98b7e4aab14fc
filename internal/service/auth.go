package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	apperrors "github.com/educonnect/educonnect-web/internal/errors"
	"github.com/educonnect/educonnect-web/internal/observability/metrics"
	"github.com/educonnect/educonnect-web/internal/observability/statsd"
	"github.com/educonnect/educonnect-web/internal/ports"
	"github.com/educonnect/educonnect-web/internal/session"
)

const defaultLogoutTimeout = 5 * time.Second

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	API           ports.APIClient  // Required: remote marketplace API
	Logger        *slog.Logger     // Optional: structured logger
	LogoutTimeout time.Duration    // Optional: bound on the detached remote logout call
	Now           func() time.Time // Optional: clock used for token expiry checks
	Metrics       statsd.Sink      // Optional: auth outcome counters and timings
}

// AuthService orchestrates login, signup, registration and logout against the remote API and
// keeps the caller's session store in step. Stores are passed per call.
type AuthService struct {
	api           ports.APIClient
	logger        *slog.Logger
	logoutTimeout time.Duration
	now           func() time.Time
	metrics       statsd.Sink

	resolving singleflight.Group
	logouts   sync.WaitGroup
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.API == nil {
		return nil, errors.New("APIClient is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.LogoutTimeout
	if timeout <= 0 {
		timeout = defaultLogoutTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		api:           opts.API,
		logger:        logger.With("component", "auth_service"),
		logoutTimeout: timeout,
		now:           now,
		metrics:       opts.Metrics,
	}, nil
}

// AuthResult is the outcome of an auth operation. On failure Error holds the message to show
// the user and Err the underlying error.
type AuthResult struct {
	OK    bool
	User  *domainauth.User
	Error string
	Err   error
}

func succeeded(user *domainauth.User) AuthResult {
	return AuthResult{OK: true, User: user}
}

func failed(err error) AuthResult {
	return AuthResult{Error: apperrors.UserMessage(err), Err: err}
}

var errInvalidResponse = &apperrors.AppError{
	Code:    apperrors.ErrCodeUpstream,
	Message: "Invalid response from server",
}

// Login exchanges credentials for a token and resolves the user. The store is untouched
// unless a token is obtained.
func (s *AuthService) Login(ctx context.Context, store *session.Store, email, password string) (res AuthResult) {
	defer s.observe("login", time.Now(), func() error { return res.Err })
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return failed(apperrors.Validation("Email and password are required"))
	}

	resp, err := s.api.Login(ctx, ports.Credentials{Email: email, Password: password})
	if err != nil {
		s.logger.InfoContext(ctx, "login rejected", "error", err)
		return failed(err)
	}
	if resp.Token == "" {
		return failed(errInvalidResponse)
	}
	return s.establish(ctx, store, resp.Token, resp.User, domainauth.RoleUnknown)
}

// SignupInput is the short signup form.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	// Role is the lowest-priority fallback when the API reports no usable role.
	Role domainauth.Role
}

// Signup registers an account that is issued a token immediately.
func (s *AuthService) Signup(ctx context.Context, store *session.Store, in SignupInput) (res AuthResult) {
	defer s.observe("signup", time.Now(), func() error { return res.Err })
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return failed(apperrors.ValidationField("name", "Name is required"))
	}
	if in.Email == "" || in.Password == "" {
		return failed(apperrors.Validation("Email and password are required"))
	}

	resp, err := s.api.Register(ctx, ports.RegisterRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     string(in.Role),
	})
	if err != nil {
		s.logger.InfoContext(ctx, "signup rejected", "error", err)
		return failed(err)
	}
	if resp.Token == "" {
		return failed(errInvalidResponse)
	}
	return s.establish(ctx, store, resp.Token, resp.User, in.Role)
}

// establish persists token before fetching the profile, then stores the resolved user.
// A missing profile leaves a token-only session that the guard resolves later.
func (s *AuthService) establish(
	ctx context.Context,
	store *session.Store,
	token string,
	inline *domainauth.Profile,
	hint domainauth.Role,
) AuthResult {
	if err := store.Set(ctx, token, nil); err != nil {
		s.logger.WarnContext(ctx, "persist token failed", "error", err)
	}

	profile, err := s.api.GetProfile(ctx, token)
	switch {
	case err == nil:
	case inline != nil:
		s.logger.DebugContext(ctx, "profile fetch failed, using inline user", "error", err)
		profile = *inline
	default:
		s.logger.WarnContext(ctx, "profile fetch failed, user unresolved", "error", err)
		return succeeded(nil)
	}

	user := profile.User(hint)
	if setErr := store.Set(ctx, token, user); setErr != nil {
		s.logger.WarnContext(ctx, "persist session failed", "error", setErr)
	}
	return succeeded(user)
}

// Logout clears the local session synchronously and revokes the token remotely in the
// background. Remote failures are logged and never surface.
func (s *AuthService) Logout(ctx context.Context, store *session.Store) error {
	if token := store.Token(); token != "" {
		s.logouts.Add(1)
		go s.revoke(context.WithoutCancel(ctx), token)
	}
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *AuthService) revoke(ctx context.Context, token string) {
	defer s.logouts.Done()
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.logoutTimeout)
	defer cancel()
	err := s.api.Logout(ctx, token)
	if err != nil {
		s.logger.InfoContext(ctx, "remote logout failed", "error", err)
	}
	s.observe("logout", start, func() error { return err })
}

// Wait blocks until in-flight remote logouts finish.
func (s *AuthService) Wait() {
	s.logouts.Wait()
}

// ResolveProfile fetches the user for a token-only session. Concurrent calls with the same
// key share one fetch. An expired or rejected token clears the store and yields a
// session_invalid error; network and server failures keep the session.
func (s *AuthService) ResolveProfile(
	ctx context.Context,
	key string,
	store *session.Store,
) (user *domainauth.User, err error) {
	defer s.observe("resolve_profile", time.Now(), func() error { return err })
	token := store.Token()
	if token == "" {
		return nil, apperrors.SessionInvalid(errors.New("no token"))
	}
	if domainauth.TokenExpired(token, s.now()) {
		return nil, s.invalidate(ctx, store, errors.New("token expired"))
	}

	// The fetch outlives any single caller; the API client's timeout bounds it.
	v, err, shared := s.resolving.Do(key, func() (any, error) {
		return s.api.GetProfile(context.WithoutCancel(ctx), token)
	})
	if err != nil {
		if apiErr, ok := apperrors.AsAPIError(err); ok && apiErr.Status < 500 {
			return nil, s.invalidate(ctx, store, err)
		}
		s.logger.WarnContext(ctx, "profile resolution failed, keeping session", "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "We could not load your profile. Please try again.")
	}

	profile, ok := v.(domainauth.Profile)
	if !ok {
		return nil, apperrors.Internalf("unexpected profile type %T", v)
	}
	user = profile.User(domainauth.RoleUnknown)
	if setErr := store.Set(ctx, token, user); setErr != nil {
		s.logger.WarnContext(ctx, "persist resolved session failed", "error", setErr)
	}
	s.logger.DebugContext(ctx, "profile resolved", "role", user.Role, "shared", shared)
	return user, nil
}

func (s *AuthService) invalidate(ctx context.Context, store *session.Store, cause error) error {
	s.logger.InfoContext(ctx, "session invalidated", "reason", cause)
	if err := store.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "clear invalid session failed", "error", err)
	}
	return apperrors.SessionInvalid(cause)
}

// observe emits the outcome of op once it returns.
func (s *AuthService) observe(op string, start time.Time, errOf func() error) {
	metrics.EmitAuth(s.metrics, metrics.AuthEvent{
		Operation: op,
		Duration:  time.Since(start),
		Err:       errOf(),
	})
}
