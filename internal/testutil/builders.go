package testutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
)

// UserBuilder provides a fluent interface for building users for tests.
type UserBuilder struct {
	user domainauth.User
}

// NewUser creates a UserBuilder for a student with sensible defaults.
func NewUser() *UserBuilder {
	return &UserBuilder{user: domainauth.User{
		ID:    "42",
		Name:  "Test Student",
		Email: "student@example.com",
		Role:  domainauth.RoleStudent,
	}}
}

// WithName sets the display name.
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.user.Name = name
	return b
}

// WithRole sets the role.
func (b *UserBuilder) WithRole(role domainauth.Role) *UserBuilder {
	b.user.Role = role
	return b
}

// Build returns a copy of the constructed user.
func (b *UserBuilder) Build() *domainauth.User {
	u := b.user
	return &u
}

// testSigningKey signs fixture tokens. Signatures are never verified by the application.
var testSigningKey = []byte("educonnect-test-signing-key")

// signedToken returns an HS256 JWT expiring at exp.
func signedToken(subject string, exp time.Time) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		panic(err)
	}
	return s
}

// ExpiredToken returns a JWT that expired an hour ago.
func ExpiredToken() string {
	return signedToken("expired", time.Now().Add(-time.Hour))
}

// FreshToken returns a JWT valid for the next hour.
func FreshToken() string {
	return signedToken("fresh", time.Now().Add(time.Hour))
}
