package errors

import (
	"errors"
	"fmt"
	"strings"
)

// NetworkError is returned when a request to the remote API produced no HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is returned when the remote API answered with a non-2xx status.
// Body holds the decoded JSON body, or {"message": <raw text>} when the body was not JSON.
type APIError struct {
	Status int
	Body   map[string]any
}

func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return msg
	}
	return fmt.Sprintf("Request failed with status %d", e.Status)
}

// Message returns the body's "message" field when it is a non-empty string.
func (e *APIError) Message() string {
	if e == nil || e.Body == nil {
		return ""
	}
	if msg, ok := e.Body["message"].(string); ok {
		return strings.TrimSpace(msg)
	}
	return ""
}

// IsNetwork reports whether err wraps a NetworkError.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// AsAPIError extracts an APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

const (
	networkMessage = "Network error"
	genericMessage = "Something went wrong. Please try again."
)

// UserMessage renders err as a short message suitable for an inline form error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == ErrCodeValidation {
		return appErr.Message
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Error()
	}
	if IsNetwork(err) {
		return networkMessage
	}
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return genericMessage
}
