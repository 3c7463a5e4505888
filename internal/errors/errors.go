package errors

import (
	"errors"
	"fmt"
)

// Common error kinds for the careermate client. Network and decode failures
// are converted into one of these at the operation boundary; nothing leaves
// a service unclassified.
var (
	// Input errors
	ErrValidation         = errors.New("validation failed")
	ErrCredentialConflict = errors.New("username already registered")

	// Session errors
	ErrAuth            = errors.New("authentication failed")
	ErrSessionExpired  = errors.New("session expired")
	ErrUnauthenticated = errors.New("not signed in")

	// Favorites errors
	ErrSaveFailed    = errors.New("favorite not saved remotely")
	ErrRemovalFailed = errors.New("favorite removal failed")

	// Transport errors
	ErrRemoteUnavailable = errors.New("backend unavailable")

	// General errors
	ErrNotFound = errors.New("not found")
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
