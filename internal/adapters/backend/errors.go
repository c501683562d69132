package backend

import (
	"errors"
	"fmt"
)

// Sentinel kinds for backend call failures.
var (
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrFeatureDenied = errors.New("feature denied")
	ErrValidation    = errors.New("validation error")
	ErrServer        = errors.New("server error")
	ErrNetwork       = errors.New("network error")
	ErrNotFound      = errors.New("not found")
)

// Error is a classified backend failure. Kind is one of the sentinel
// errors above so callers can route with errors.Is.
type Error struct {
	Kind                 error
	StatusCode           int
	Message              string
	RequiresSubscription bool
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// RequiresSubscription reports whether err carries the backend's
// subscription marker. Such failures route to the paywall, never to a
// generic error surface.
func RequiresSubscription(err error) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.RequiresSubscription
	}
	return false
}

// MessageOf extracts the backend-provided message from err, if any.
func MessageOf(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}

// retryable reports whether a failure is worth retrying on an
// idempotent request. Only transport and 5xx failures qualify.
func retryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrServer)
}
