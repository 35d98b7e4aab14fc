// Package ports defines interfaces (hexagonal ports) for the marketplace API and device storage.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	"github.com/educonnect/educonnect-web/internal/domain/model"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration request body. The full registration form sends
// first/last name, phone and role_id; the short signup form sends name and role.
type RegisterRequest struct {
	Name        string `json:"name,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	RoleID      int    `json:"role_id,omitempty"`
	Role        string `json:"role,omitempty"`
	Password    string `json:"password"`
}

// RegisterResponse is the normalized registration result. Either Token is set, or the
// account awaits phone verification and UserID/PhoneNumber identify it.
type RegisterResponse struct {
	Token                string
	RequiresVerification bool
	User                 *domainauth.Profile
	UserID               domainauth.ID
	PhoneNumber          string
}

// TokenResponse is the normalized result of login and verify.
type TokenResponse struct {
	Token string
	User  *domainauth.Profile
}

// VerificationTarget identifies the account a code was sent to. UserID wins when both are set.
type VerificationTarget struct {
	UserID      domainauth.ID
	PhoneNumber string
}

// VerifyRequest carries a verification code and its target.
type VerifyRequest struct {
	Code   string
	Target VerificationTarget
}

// APIClient is the remote marketplace API. Implementations return *errors.NetworkError
// when no response was received and *errors.APIError for non-2xx responses. They never
// touch device storage.
type APIClient interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
	Login(ctx context.Context, creds Credentials) (TokenResponse, error)
	Logout(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResendCode(ctx context.Context, target VerificationTarget) error
	VerifyCode(ctx context.Context, req VerifyRequest) (TokenResponse, error)
	// GetProfile tries the primary profile endpoint and falls back to the secondary one.
	GetProfile(ctx context.Context, token string) (domainauth.Profile, error)
	// List fetches a catalogue collection. The bearer header is attached only when token is set.
	List(ctx context.Context, kind model.ListingKind, token string) ([]model.Listing, error)
}
