// internal/status/health.go
package status

import (
	"errors"
	"time"
)

// Health summarizes the coordinator for consumers.
// It is a value; callers get a copy.
type Health struct {
	State State

	// ConsecutiveFailures counts fatal cycles since the last good one.
	ConsecutiveFailures int

	// LastErrorCode is the code of the last fatal error, 0 when healthy.
	LastErrorCode uint16
	LastError     string

	LastSuccess time.Time

	// FailingSince is zero while healthy.
	FailingSince time.Time
}

// Healthy reports whether the last cycle succeeded.
func (h Health) Healthy() bool {
	return h.ConsecutiveFailures == 0 && h.State != StateFailed
}

// SecondsInError is how long the device has been failing, capped at 65535.
func (h Health) SecondsInError(now time.Time) uint16 {
	if h.FailingSince.IsZero() {
		return 0
	}
	s := now.Sub(h.FailingSince) / time.Second
	if s < 0 {
		return 0
	}
	if s > 65535 {
		return 65535
	}
	return uint16(s)
}

// ErrorCode extracts a best-effort uint16 code from an error without
// assuming concrete types. Errors that expose no code map to 1.
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}

	return 1
}
