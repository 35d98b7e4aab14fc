// Package metrics turns application events into StatsD metrics.
package metrics

import (
	"time"

	apperrors "github.com/educonnect/educonnect-web/internal/errors"
	"github.com/educonnect/educonnect-web/internal/observability/statsd"
)

// Result tags.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// AuthEvent is one completed auth operation.
type AuthEvent struct {
	Operation string
	Duration  time.Duration
	Err       error
}

// EmitAuth counts the operation by result and records its duration.
// Failures are tagged with the application error code.
func EmitAuth(sink statsd.Sink, ev AuthEvent) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"operation": ev.Operation,
		"result":    ResultSuccess,
	}
	if ev.Err != nil {
		tags["result"] = ResultError
		tags["error_code"] = ErrorCode(ev.Err)
	}
	sink.Count("auth.operation", 1, tags)
	if ev.Duration > 0 {
		sink.Timing("auth.duration", ev.Duration, CloneTags(tags))
	}
}

// EmitGuard counts one route guard decision.
func EmitGuard(sink statsd.Sink, outcome string) {
	if sink == nil {
		return
	}
	sink.Count("guard.decision", 1, map[string]string{"outcome": outcome})
}

// ErrorCode is the metric tag for err: its application code, or "unknown".
func ErrorCode(err error) string {
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}
	return "unknown"
}

// CloneTags returns a copy of src, or nil when it is empty.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
