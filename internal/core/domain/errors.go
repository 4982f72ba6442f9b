package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
//
// The code suffix carries the transport status class (see the handler's
// errorCodeToHTTPStatus), so the error itself stays transport-agnostic.
type DomainError struct {
	Code    string // Error code (e.g., "TG-TOKN-4011")
	Message string // Human-readable message, safe to return to clients
	Details string // Optional additional details, never rendered
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithMessage returns a copy of the error with a different client-facing message.
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: message,
		Details: e.Details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// GetErrorMessage extracts the client-facing message from a DomainError.
// Other errors yield the generic internal message.
func GetErrorMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return ErrInternalServer.Message
}

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrMethodInvalid indicates the operation was invoked with a method it does not accept.
	ErrMethodInvalid = NewDomainError("TG-ARG-4000", "http method is invalid")

	// ErrInvalidCredentials covers both malformed credentials and failed
	// credential checks. The message is identical for unknown users and wrong
	// passwords.
	ErrInvalidCredentials = NewDomainError("TG-ARG-4001", "username or password is invalid")

	// ErrEmailInvalid indicates the email failed validation.
	ErrEmailInvalid = NewDomainError("TG-ARG-4002", "email is invalid")

	// ErrBadRequest indicates a malformed request body.
	ErrBadRequest = NewDomainError("TG-ARG-4003", "invalid request body")
)

// ============================================================================
// User Errors (USER)
// ============================================================================

var (
	// ErrUserExists indicates the username is already registered.
	ErrUserExists = NewDomainError("TG-USER-4004", "username is registered")

	// ErrSignUpFailed indicates registration failed for a non-client reason.
	ErrSignUpFailed = NewDomainError("TG-USER-4005", "sign_up error")

	// ErrUserNotFound indicates the username is unknown. Never rendered as-is.
	ErrUserNotFound = NewDomainError("TG-USER-4040", "user not found")
)

// ============================================================================
// Token Errors (TOKN)
// ============================================================================

var (
	// ErrTokenRequired indicates an empty token was presented.
	ErrTokenRequired = NewDomainError("TG-TOKN-4006", "token is required")

	// ErrTokenMissing indicates no token cookie was sent.
	ErrTokenMissing = NewDomainError("TG-TOKN-4010", "token is missing")

	// ErrTokenInvalid indicates a token that fails signature or structure
	// checks, or that is no longer the registered session token.
	ErrTokenInvalid = NewDomainError("TG-TOKN-4011", "token is invalid")

	// ErrTokenExpired indicates a correctly signed but expired token.
	ErrTokenExpired = NewDomainError("TG-TOKN-4012", "token is expired")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("TG-SYS-5000", "internal server error")

	// ErrStorage indicates a storage layer error.
	ErrStorage = NewDomainError("TG-SYS-5001", "storage error")

	// ErrTooManyRequests indicates the client exceeded its request rate.
	ErrTooManyRequests = NewDomainError("TG-SYS-4290", "too many requests")
)
