// Package session persists a device's authentication state in its durable storage namespace.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	"github.com/educonnect/educonnect-web/internal/ports"
)

// record is the combined stored form under ports.KeyAuthState.
type record struct {
	User  *domainauth.User `json:"user"`
	Token string           `json:"token"`
}

// Store is one device's session. Memory state is guarded by a RWMutex; storage writes
// happen after the memory update and are not rolled back on failure.
type Store struct {
	storage ports.DurableStorage
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
	user  *domainauth.User
}

// NewStore binds a store to storage. Call Load to hydrate it.
func NewStore(storage ports.DurableStorage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{storage: storage, logger: logger.With("component", "session_store")}
}

// Load hydrates memory from storage and returns the result. The combined record wins;
// a bare token yields a session with an unresolved user. Storage failures and corrupt
// records read as "no session".
func (s *Store) Load(ctx context.Context) domainauth.Session {
	sess := s.read(ctx)

	s.mu.Lock()
	s.token, s.user = sess.Token, sess.User
	s.mu.Unlock()
	return sess
}

func (s *Store) read(ctx context.Context) domainauth.Session {
	raw, found, err := s.storage.GetItem(ctx, ports.KeyAuthState)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "read auth state failed", "error", err)
	case found:
		var rec record
		if jsonErr := json.Unmarshal([]byte(raw), &rec); jsonErr != nil {
			s.logger.WarnContext(ctx, "discarding corrupt auth state", "error", jsonErr)
		} else if rec.Token != "" {
			return domainauth.Session{Token: rec.Token, User: rec.User}
		}
	}

	token, found, err := s.storage.GetItem(ctx, ports.KeyAuthToken)
	if err != nil {
		s.logger.WarnContext(ctx, "read auth token failed", "error", err)
		return domainauth.Session{}
	}
	if !found || token == "" {
		return domainauth.Session{}
	}
	return domainauth.Session{Token: token}
}

// Set replaces the session. The token key is written first so a token survives even when
// the process dies before the user is resolved; the combined record follows and exists only
// while both token and user are set.
func (s *Store) Set(ctx context.Context, token string, user *domainauth.User) error {
	var stored *domainauth.User
	if user != nil {
		u := *user
		stored = &u
	}

	s.mu.Lock()
	s.token, s.user = token, stored
	s.mu.Unlock()

	var errs []error
	if token != "" {
		if err := s.storage.SetItem(ctx, ports.KeyAuthToken, token); err != nil {
			errs = append(errs, fmt.Errorf("persist auth token: %w", err))
		}
	} else if err := s.storage.RemoveItem(ctx, ports.KeyAuthToken); err != nil {
		errs = append(errs, fmt.Errorf("remove auth token: %w", err))
	}

	if token != "" && stored != nil {
		raw, err := json.Marshal(record{User: stored, Token: token})
		if err != nil {
			errs = append(errs, fmt.Errorf("encode auth state: %w", err))
		} else if err := s.storage.SetItem(ctx, ports.KeyAuthState, string(raw)); err != nil {
			errs = append(errs, fmt.Errorf("persist auth state: %w", err))
		}
	} else if err := s.storage.RemoveItem(ctx, ports.KeyAuthState); err != nil {
		errs = append(errs, fmt.Errorf("remove auth state: %w", err))
	}

	return errors.Join(errs...)
}

// Clear removes both keys and resets memory.
func (s *Store) Clear(ctx context.Context) error {
	return s.Set(ctx, "", nil)
}

// Snapshot returns a copy of the in-memory session.
func (s *Store) Snapshot() domainauth.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := domainauth.Session{Token: s.token}
	if s.user != nil {
		u := *s.user
		sess.User = &u
	}
	return sess
}

// Token returns the bearer token, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the resolved user, or nil.
func (s *Store) User() *domainauth.User {
	return s.Snapshot().User
}

// IsAuthenticated is true iff a token is held and the user is resolved.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}
