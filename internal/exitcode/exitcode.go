// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"tick/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, ambiguous).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)

// For maps an error returned by a service call to an exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrUnauthorized):
		return AuthError
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrAmbiguous),
		errors.Is(err, service.ErrUnsupported):
		return UserError
	default:
		return BackendError
	}
}
