package app

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification carried by every
// application error that crosses the API boundary.
type ErrorKind string

const (
	KindInvalidAddress           ErrorKind = "invalid_address"
	KindAddressAlreadyRegistered ErrorKind = "address_already_registered"
	KindInvalidOrExpiredCode     ErrorKind = "invalid_or_expired_code"
	KindValidationFailed         ErrorKind = "validation_failed"
	KindDuplicateAccount         ErrorKind = "duplicate_account"
	KindInvalidCredentials       ErrorKind = "invalid_credentials"
	KindNotFound                 ErrorKind = "not_found"
	KindRateLimited              ErrorKind = "rate_limited"
	KindInternal                 ErrorKind = "internal"
)

// Error is a field-scoped application error. Field is empty unless the
// error concerns a specific request field (validation, duplicates).
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	// Fields carries per-field messages for validation failures.
	Fields map[string]string
	cause  error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// NewError builds an application error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewFieldError builds an application error scoped to a single field.
func NewFieldError(kind ErrorKind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

// NewValidationError wraps per-field validation messages.
func NewValidationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidationFailed, Message: "Validation error", Fields: fields}
}

// Internal wraps an unexpected failure. The cause is kept for logging but
// the message shown to callers stays generic.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", cause: cause}
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// AsError extracts the application error from err, defaulting to Internal.
func AsError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
