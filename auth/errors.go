package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNetwork            = errors.New("network unavailable")
	ErrServer             = errors.New("server error")
	ErrRefreshFailed      = errors.New("session refresh failed")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// ValidationError reports a missing or malformed input field, caught before
// any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RateLimitedError is returned when the server answers a login attempt with
// HTTP 429. It carries the client-side cooldown during which resubmission is
// disabled.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, retry in %s", e.RetryAfter)
}
