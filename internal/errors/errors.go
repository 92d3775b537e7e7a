package errors

import "errors"

// Error taxonomy for the session lifecycle
var (
	// Configuration errors
	ErrConfigMissing = errors.New("oauth configuration missing")

	// Code exchange errors
	ErrCodeExchangeFailed = errors.New("authorization code exchange failed")
	ErrCodeAlreadyUsed    = errors.New("authorization code already used")
	ErrInvalidIDToken     = errors.New("id token verification failed")

	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrTokenExpired     = errors.New("token expired")

	// Chat errors
	ErrEmptyMessage = errors.New("message is empty")
	ErrChatBackend  = errors.New("chat backend error")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join combines errors, dropping nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
