package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation  ErrorCategory = "validation" // Invalid user input, blocks the triggering action
	ErrCatConfig      ErrorCategory = "config"     // Missing credentials or misconfiguration
	ErrCatUpstream    ErrorCategory = "upstream"   // Collaborator unreachable or returned an error
	ErrCatTimeout     ErrorCategory = "timeout"    // Collaborator call timed out
	ErrCatMalformed   ErrorCategory = "malformed"  // Collaborator reply could not be interpreted
	ErrCatEmptyResult ErrorCategory = "empty"      // Collaborator returned zero usable rows
	ErrCatRelaxation  ErrorCategory = "relaxation" // Relaxation unavailable or failed (degrades, never fatal)
	ErrCatState       ErrorCategory = "state"      // Session state conflict
	ErrCatInternal    ErrorCategory = "internal"   // Unexpected internal error
)

// Well-known error codes.
const (
	CodeConfigMissingKey      = "CONFIG_MISSING_API_KEY"
	CodeUpstreamUnavailable   = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamTimeout       = "UPSTREAM_TIMEOUT"
	CodeMalformedResponse     = "MALFORMED_RESPONSE"
	CodeEmptyResult           = "EMPTY_RESULT"
	CodeRelaxationUnavailable = "RELAXATION_UNAVAILABLE"
	CodeRelaxationFailed      = "RELAXATION_FAILED"
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error. Validation errors block the
// triggering action before any external call or state mutation happens.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrConfig creates a configuration error. Fatal to the stage, not the session.
func ErrConfig(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatConfig,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrUpstream creates an upstream-unavailable error.
func ErrUpstream(collaborator, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatUpstream,
		Code:      CodeUpstreamUnavailable,
		Message:   message,
		Retryable: true,
		Details:   map[string]interface{}{"collaborator": collaborator},
	}
}

// ErrUpstreamTimeout creates an upstream-timeout error.
func ErrUpstreamTimeout(collaborator, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatTimeout,
		Code:      CodeUpstreamTimeout,
		Message:   message,
		Retryable: true,
		Details:   map[string]interface{}{"collaborator": collaborator},
	}
}

// ErrMalformed creates a malformed-response error.
func ErrMalformed(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatMalformed,
		Code:      CodeMalformedResponse,
		Message:   message,
		Retryable: true,
	}
}

// ErrEmptyResult creates an empty-result error.
func ErrEmptyResult(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatEmptyResult,
		Code:      CodeEmptyResult,
		Message:   message,
		Retryable: true,
	}
}

// ErrRelaxationUnavailable signals that the relaxation collaborator is
// not installed. Recoverable: the raw structure stays usable.
func ErrRelaxationUnavailable(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatRelaxation,
		Code:      CodeRelaxationUnavailable,
		Message:   message,
		Retryable: false,
	}
}

// ErrRelaxationFailed signals a process-level relaxation failure.
// Recoverable: the raw structure stays usable.
func ErrRelaxationFailed(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatRelaxation,
		Code:      CodeRelaxationFailed,
		Message:   message,
		Retryable: true,
	}
}

// ErrState creates a session state error.
func ErrState(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatState,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrInternal creates an internal error.
func ErrInternal(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatInternal,
		Code:      "INTERNAL",
		Message:   message,
		Retryable: false,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category == cat
	}
	return false
}

// IsRelaxationError reports whether the error only affects the optional
// relaxation sub-step, i.e. the stage can still succeed with the raw
// structure.
func IsRelaxationError(err error) bool {
	return IsCategory(err, ErrCatRelaxation)
}

// UserMessage returns a message suitable for surfacing to the user.
// Non-domain errors are wrapped in a generic phrasing so internal
// details never leak to the UI layer.
func UserMessage(err error) string {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Message
	}
	if err != nil {
		return fmt.Sprintf("unexpected error: %v", err)
	}
	return ""
}
