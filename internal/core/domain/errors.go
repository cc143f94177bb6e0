// Package domain defines the core domain models for hostdeck.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
//
// Codes follow the HD-<AREA>-<NNNN> layout, where the number mirrors the
// closest HTTP status.
type DomainError struct {
	Code    string // Error code (e.g., "HD-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
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

// Details returns the details of the outermost DomainError in err's chain,
// or "" when there is none.
func Details(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Details
	}
	return ""
}

// ============================================================================
// Validation Errors (VAL)
// Raised locally; no network call is made.
// ============================================================================

var (
	// ErrInvalidArgument indicates malformed user input.
	ErrInvalidArgument = NewDomainError("HD-VAL-4000", "invalid argument")

	// ErrWeakSecret indicates the password failed the strength check.
	ErrWeakSecret = NewDomainError("HD-VAL-4001", "password does not meet strength requirements")
)

// ============================================================================
// Authorization Errors (AUTH)
// ============================================================================

var (
	// ErrUnauthorized indicates the backend rejected the access credential.
	ErrUnauthorized = NewDomainError("HD-AUTH-4010", "unauthorized")

	// ErrRenewalFailed indicates the renewal call itself failed.
	ErrRenewalFailed = NewDomainError("HD-AUTH-4011", "credential renewal failed")

	// ErrNoRenewalCredential indicates there is no renewal credential to use.
	ErrNoRenewalCredential = NewDomainError("HD-AUTH-4012", "no renewal credential")

	// ErrNotSignedIn indicates the local session is not authenticated.
	ErrNotSignedIn = NewDomainError("HD-AUTH-4013", "not signed in")

	// ErrAdminRequired indicates the admin role is required.
	ErrAdminRequired = NewDomainError("HD-AUTH-4030", "admin role required")
)

// ============================================================================
// Backend Errors (API)
// ============================================================================

var (
	// ErrBackend indicates the backend answered with success=false.
	ErrBackend = NewDomainError("HD-API-4000", "backend reported failure")

	// ErrBadResponse indicates the backend response could not be decoded.
	ErrBadResponse = NewDomainError("HD-API-5020", "malformed backend response")
)

// ============================================================================
// Network Errors (NET)
// Never trigger renewal.
// ============================================================================

var (
	// ErrNetwork indicates the request never produced a response.
	ErrNetwork = NewDomainError("HD-NET-5030", "network error")

	// ErrTimeout indicates the request exceeded the gateway timeout.
	ErrTimeout = NewDomainError("HD-NET-5040", "request timed out")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrStorage indicates the local session record could not be read or written.
	ErrStorage = NewDomainError("HD-SYS-5001", "storage error")
)
