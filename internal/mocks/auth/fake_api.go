// Package auth contains a hand-written, in-memory stand-in for the marketplace API.
// It is stateful, so handler tests can run whole flows without codegen expectations.
package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	"github.com/educonnect/educonnect-web/internal/domain/model"
	apperrors "github.com/educonnect/educonnect-web/internal/errors"
	"github.com/educonnect/educonnect-web/internal/ports"
)

// Ensure compile-time conformance to ports.
var _ ports.APIClient = (*FakeAPI)(nil)

// DefaultVerificationCode is the code every fake account accepts.
const DefaultVerificationCode = "123456"

type account struct {
	user     domainauth.User
	password string
	verified bool
}

// FakeAPI simulates the marketplace API.
type FakeAPI struct {
	// RequireVerification makes Register withhold the token until VerifyCode succeeds.
	RequireVerification bool
	// Offline makes every call fail with a NetworkError.
	Offline bool
	// ProfileFunc overrides GetProfile when set.
	ProfileFunc func(ctx context.Context, token string) (domainauth.Profile, error)

	ProfileCalls atomic.Int32
	LogoutCalls  atomic.Int32

	mu       sync.Mutex
	nextID   int
	accounts map[string]*account // by email
	tokens   map[string]string   // token -> email
	listings map[model.ListingKind][]model.Listing
}

// NewFakeAPI creates an empty fake.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		nextID:   100,
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		listings: make(map[model.ListingKind][]model.Listing),
	}
}

// AddUser registers a verified account and returns a token already issued to it.
func (f *FakeAPI) AddUser(user domainauth.User, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = f.newID()
	}
	f.accounts[strings.ToLower(user.Email)] = &account{user: user, password: password, verified: true}
	return f.issue(user.Email)
}

// SetListings replaces the catalogue for kind.
func (f *FakeAPI) SetListings(kind model.ListingKind, items []model.Listing) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[kind] = items
}

// TokenValid reports whether token is currently issued.
func (f *FakeAPI) TokenValid(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	return ok
}

func (f *FakeAPI) newID() domainauth.ID {
	f.nextID++
	return domainauth.ID(strconv.Itoa(f.nextID))
}

func (f *FakeAPI) issue(email string) string {
	token := "fake-token-" + strconv.Itoa(len(f.tokens)+1) + "-" + strings.ToLower(email)
	f.tokens[token] = strings.ToLower(email)
	return token
}

func reject(status int, msg string) error {
	return &apperrors.APIError{Status: status, Body: map[string]any{"message": msg}}
}

func (f *FakeAPI) offline(op string) error {
	if f.Offline {
		return &apperrors.NetworkError{Op: op, Err: context.DeadlineExceeded}
	}
	return nil
}

func profileOf(u domainauth.User) domainauth.Profile {
	return domainauth.Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  domainauth.RoleName(string(u.Role)),
	}
}

func (f *FakeAPI) Register(_ context.Context, req ports.RegisterRequest) (ports.RegisterResponse, error) {
	if err := f.offline("POST /auth/register"); err != nil {
		return ports.RegisterResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.ToLower(req.Email)
	if _, exists := f.accounts[key]; exists {
		return ports.RegisterResponse{}, reject(http.StatusUnprocessableEntity, "The email has already been taken.")
	}

	name := req.Name
	if name == "" {
		name = strings.TrimSpace(req.FirstName + " " + req.LastName)
	}
	role := domainauth.Role(req.Role)
	if role == domainauth.RoleUnknown && req.RoleID != 0 {
		role = domainauth.RoleID(req.RoleID).Canonical()
	}
	acct := &account{
		user: domainauth.User{
			ID:    f.newID(),
			Name:  name,
			Email: req.Email,
			Role:  role,
			Phone: req.PhoneNumber,
		},
		password: req.Password,
		verified: !f.RequireVerification,
	}
	f.accounts[key] = acct

	if f.RequireVerification {
		return ports.RegisterResponse{
			RequiresVerification: true,
			UserID:               acct.user.ID,
			PhoneNumber:          req.PhoneNumber,
		}, nil
	}
	p := profileOf(acct.user)
	return ports.RegisterResponse{Token: f.issue(req.Email), User: &p}, nil
}

func (f *FakeAPI) Login(_ context.Context, creds ports.Credentials) (ports.TokenResponse, error) {
	if err := f.offline("POST /auth/login"); err != nil {
		return ports.TokenResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	acct, ok := f.accounts[strings.ToLower(creds.Email)]
	if !ok || acct.password != creds.Password {
		return ports.TokenResponse{}, reject(http.StatusUnauthorized, "Invalid credentials")
	}
	if !acct.verified {
		return ports.TokenResponse{}, reject(http.StatusForbidden, "Phone number not verified")
	}
	p := profileOf(acct.user)
	return ports.TokenResponse{Token: f.issue(creds.Email), User: &p}, nil
}

func (f *FakeAPI) Logout(_ context.Context, token string) error {
	f.LogoutCalls.Add(1)
	if err := f.offline("POST /auth/logout"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

func (f *FakeAPI) ForgotPassword(_ context.Context, email string) error {
	if err := f.offline("POST /auth/forgot-password"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[strings.ToLower(email)]; !ok {
		return reject(http.StatusNotFound, "We can't find a user with that email address.")
	}
	return nil
}

func (f *FakeAPI) findTarget(target ports.VerificationTarget) (*account, string) {
	for email, acct := range f.accounts {
		if target.UserID != "" && acct.user.ID == target.UserID {
			return acct, email
		}
		if target.UserID == "" && target.PhoneNumber != "" &&
			domainauth.NormalizePhone(acct.user.Phone) == target.PhoneNumber {
			return acct, email
		}
	}
	return nil, ""
}

func (f *FakeAPI) ResendCode(_ context.Context, target ports.VerificationTarget) error {
	if err := f.offline("POST /auth/resend-code"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if acct, _ := f.findTarget(target); acct == nil {
		return reject(http.StatusNotFound, "User not found")
	}
	return nil
}

func (f *FakeAPI) VerifyCode(_ context.Context, req ports.VerifyRequest) (ports.TokenResponse, error) {
	if err := f.offline("POST /auth/verify"); err != nil {
		return ports.TokenResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	acct, email := f.findTarget(req.Target)
	if acct == nil {
		return ports.TokenResponse{}, reject(http.StatusNotFound, "User not found")
	}
	if req.Code != DefaultVerificationCode {
		return ports.TokenResponse{}, reject(http.StatusUnprocessableEntity, "Invalid verification code")
	}
	acct.verified = true
	return ports.TokenResponse{Token: f.issue(email)}, nil
}

func (f *FakeAPI) GetProfile(ctx context.Context, token string) (domainauth.Profile, error) {
	f.ProfileCalls.Add(1)
	if f.ProfileFunc != nil {
		return f.ProfileFunc(ctx, token)
	}
	if err := f.offline("GET /auth/profile"); err != nil {
		return domainauth.Profile{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.tokens[token]
	if !ok {
		return domainauth.Profile{}, reject(http.StatusUnauthorized, "Unauthenticated.")
	}
	return profileOf(f.accounts[email].user), nil
}

func (f *FakeAPI) List(_ context.Context, kind model.ListingKind, _ string) ([]model.Listing, error) {
	if err := f.offline("GET /" + string(kind)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Listing(nil), f.listings[kind]...), nil
}
