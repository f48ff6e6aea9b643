package serviceerr

import (
	"errors"
	"fmt"
)

var ErrConflict = errors.New("already exists")
var ErrNotFound = errors.New("not found")

// ErrConfiguration marks configuration problems that must stop the startup.
var ErrConfiguration = errors.New("invalid configuration")

// Kind classifies a failed login attempt.
type Kind string

const (
	KindInvalidState       Kind = "invalid_state"
	KindProviderRejected   Kind = "provider_rejected"
	KindProfileFetchFailed Kind = "profile_fetch_failed"
)

// AuthError ends a login attempt. Err carries the underlying cause for logging.
type AuthError struct {
	Kind Kind
	Err  error
}

var (
	ErrInvalidState       = &AuthError{Kind: KindInvalidState}
	ErrProviderRejected   = &AuthError{Kind: KindProviderRejected}
	ErrProfileFetchFailed = &AuthError{Kind: KindProfileFetchFailed}
)

// NewAuthError wraps err into an AuthError of the given kind.
func NewAuthError(kind Kind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}

	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel AuthError of the same kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}

	return t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first AuthError in the chain of err.
func KindOf(err error) (Kind, bool) {
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		return "", false
	}

	return authErr.Kind, true
}
