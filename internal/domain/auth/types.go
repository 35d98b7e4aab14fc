package auth

// Package auth contains domain-level types for marketplace users and browser sessions.
// It is pure and free of framework/adapter concerns.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the canonical role name used for routing and navigation.
// The zero value is the unknown role.
type Role string

const (
	RoleUnknown Role = ""
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// IsKnown reports whether the role was resolved to a name.
func (r Role) IsKnown() bool { return r != RoleUnknown }

// ID is a user identifier. The API sends it either as a JSON string or a JSON number.
type ID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// User is the locally stored user record.
type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
	Phone string `json:"phone_number,omitempty"`
}

// DisplayName returns the name, falling back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Session is the in-memory view of a device's authentication state.
// A token without a user means the user has not been resolved yet.
type Session struct {
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// HasToken reports whether a bearer token is held.
func (s Session) HasToken() bool { return s.Token != "" }

// IsAuthenticated is true iff a token is held and the user is resolved.
func (s Session) IsAuthenticated() bool { return s.Token != "" && s.User != nil }

// Role returns the user's role, or RoleUnknown when no user is resolved.
func (s Session) Role() Role {
	if s.User == nil {
		return RoleUnknown
	}
	return s.User.Role
}

// PendingVerification is the record persisted between registration and phone verification.
type PendingVerification struct {
	UserID      ID     `json:"user_id,omitempty"`
	PhoneNumber string `json:"phone_number"`
}

// IsZero reports whether the record carries no verification target.
func (p PendingVerification) IsZero() bool {
	return p.UserID == "" && p.PhoneNumber == ""
}

// NormalizePhone strips whitespace and a single leading '+'.
func NormalizePhone(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "+")
}
