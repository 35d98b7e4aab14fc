package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "message only",
			err:      &AppError{Code: ErrCodeValidation, Message: "Passwords do not match"},
			expected: "Passwords do not match",
		},
		{
			name:     "message with cause",
			err:      &AppError{Code: ErrCodeInternal, Message: "save session", Cause: errors.New("boom")},
			expected: "save session: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(cause, ErrCodeInternal, "wrapped")
	assert.ErrorIs(t, err, cause)
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
}

func TestValidationField(t *testing.T) {
	err := ValidationField("phone", "Phone number must be 9 digits and start with 5")
	assert.True(t, IsValidation(err))
	assert.Equal(t, "phone", GetField(err))
	assert.Equal(t, "Phone number must be 9 digits and start with 5", err.Error())
}

func TestSessionInvalid(t *testing.T) {
	cause := &APIError{Status: 401}
	err := fmt.Errorf("resolve profile: %w", SessionInvalid(cause))

	assert.True(t, IsSessionInvalid(err))
	assert.Equal(t, ErrCodeSessionInvalid, GetCode(err))
	apiErr, ok := AsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, 401, apiErr.Status)
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "plain error", err: errors.New("x"), expected: ""},
		{name: "validation", err: Validation("bad"), expected: ErrCodeValidation},
		{name: "network", err: &NetworkError{Op: "login", Err: errors.New("dial")}, expected: ErrCodeNetwork},
		{name: "api", err: &APIError{Status: 500}, expected: ErrCodeUpstream},
		{name: "wrapped api", err: fmt.Errorf("login: %w", &APIError{Status: 422}), expected: ErrCodeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetCode(tt.err))
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "message from body",
			err:      &APIError{Status: 401, Body: map[string]any{"message": "Invalid credentials"}},
			expected: "Invalid credentials",
		},
		{
			name:     "non string message",
			err:      &APIError{Status: 422, Body: map[string]any{"message": 12}},
			expected: "Request failed with status 422",
		},
		{
			name:     "empty body",
			err:      &APIError{Status: 503},
			expected: "Request failed with status 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Op: "POST /auth/login", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsNetwork(fmt.Errorf("wrap: %w", err)))
	assert.Contains(t, err.Error(), "POST /auth/login")
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "validation", err: ValidationField("password", "Password must be at least 6 characters"), expected: "Password must be at least 6 characters"},
		{name: "api message", err: &APIError{Status: 401, Body: map[string]any{"message": "Invalid credentials"}}, expected: "Invalid credentials"},
		{name: "api status", err: &APIError{Status: 500}, expected: "Request failed with status 500"},
		{name: "network", err: &NetworkError{Err: errors.New("dial tcp")}, expected: "Network error"},
		{name: "internal app error", err: Internal("Invalid response from server"), expected: "Invalid response from server"},
		{name: "unknown", err: errors.New("kaboom"), expected: genericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserMessage(tt.err))
		})
	}
}
