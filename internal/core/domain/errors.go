package domain

import "errors"

var ErrLoginSuperseded = errors.New("login superseded by a newer request")
var ErrSessionCorrupt = errors.New("stored session is corrupt")
var ErrNotAuthenticated = errors.New("not authenticated")
var ErrInvalidSession = errors.New("session requires both a user and a token")

var ErrMissingSearchParams = errors.New("missing search parameters")
var ErrMissingBookingParams = errors.New("missing booking parameters")
var ErrInvalidSeatCount = errors.New("please enter a valid number between 1 and 6")
var ErrSeatsUnavailable = errors.New("not enough seats available")
var ErrScheduleNotFound = errors.New("schedule not found")
var ErrIncompletePassengers = errors.New("please fill in all details for all passengers")
var ErrInvalidResourceKind = errors.New("unknown admin resource")

const (
	authenticationMessage = "invalid email or password"
	registrationMessage   = "registration failed"
)

// AuthenticationError is returned for every failed login. Its message is
// deliberately generic: it never reveals whether the account exists. The
// underlying cause is kept for logging only.
type AuthenticationError struct {
	cause error
}

// NewAuthenticationError wraps cause, which may be nil.
func NewAuthenticationError(cause error) *AuthenticationError {
	return &AuthenticationError{cause: cause}
}

func (e *AuthenticationError) Error() string { return authenticationMessage }

func (e *AuthenticationError) Unwrap() error { return e.cause }

// RegistrationError carries the backend's explanation when it gave one
// (e.g. "user already exists").
type RegistrationError struct {
	Message string
	cause   error
}

// NewRegistrationError builds a RegistrationError, falling back to a
// generic message when the backend gave none.
func NewRegistrationError(message string, cause error) *RegistrationError {
	if message == "" {
		message = registrationMessage
	}
	return &RegistrationError{Message: message, cause: cause}
}

func (e *RegistrationError) Error() string { return e.Message }

func (e *RegistrationError) Unwrap() error { return e.cause }

// IsAuthenticationError reports whether err is, or wraps, an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}
