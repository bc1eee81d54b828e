package errors

import (
	"errors"
	"fmt"
)

// Common error types for the console gateway
var (
	// Request errors
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")

	// Session errors
	ErrNoSession      = errors.New("no session")
	ErrSessionExpired = errors.New("session expired")

	// CSRF errors
	ErrMissingCSRFToken = errors.New("missing CSRF token")

	// SSO correlation errors
	ErrMissingCorrelation = errors.New("missing SSO correlation state")
	ErrInvalidTokenType   = errors.New("invalid token type")

	// Refresh errors
	ErrMissingRefreshToken  = errors.New("missing refresh token")
	ErrRefreshTokenReplayed = errors.New("refresh token already used")

	// Upstream errors
	ErrUpstreamRejected    = errors.New("upstream rejected request")
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	ErrUpstreamNoBody      = errors.New("upstream response has no body")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
