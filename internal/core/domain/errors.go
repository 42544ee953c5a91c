package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session invalid")
	ErrDuplicateToken     = errors.New("session token already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrGiftNotFound       = errors.New("gift not found")
)

// ValidationError reports caller input that failed validation. Fields names
// every offending field so the response can point at them.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return strings.Join(e.Fields, ", ") + " required"
}

// RateLimitError is returned when a client exhausted its login attempts.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %s", e.RetryAfter.Round(time.Second))
}
