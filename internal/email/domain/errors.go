package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrGmailNotConfigured means no credential has been stored yet.
	ErrGmailNotConfigured = errors.New("gmail not configured, please set up gmail integration")
	// ErrGmailTokenExpired means the stored credential was rejected by Google
	// and has been invalidated.
	ErrGmailTokenExpired = errors.New("gmail token expired, please re-authenticate")
	// ErrFetchFailed wraps any other provider or network failure. Retrying is safe.
	ErrFetchFailed = errors.New("failed to fetch emails")
	// ErrEmailNotFound is returned when a message is missing or outside the inbox.
	ErrEmailNotFound = errors.New("email not found")
	// ErrInvalidOAuthState rejects a setup callback whose state was never
	// issued, was already used, or has expired.
	ErrInvalidOAuthState = errors.New("invalid or expired setup state")
)

// ValidationError rejects a malformed inbox name or a disallowed domain.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NeedsSetup reports whether err should send the user to the Gmail setup flow.
func NeedsSetup(err error) bool {
	return errors.Is(err, ErrGmailNotConfigured) || errors.Is(err, ErrGmailTokenExpired)
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
