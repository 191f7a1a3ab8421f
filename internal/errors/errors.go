// Package errors provides centralized error definitions and error handling utilities
// for pulse. It defines sentinel errors, typed errors with context wrapping, and
// error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent failures of a subsystem:
//   - TransportError: a search transport invocation failed
//   - SourceError: a counter source failed to produce a value
//
// Semantic errors represent common error conditions:
//   - ValidationError: invalid input or state
//
// Search term rejections live in the term package; they implement [PulseError]
// and match [ErrTermRejected].
//
// # Usage
//
//	err := errors.NewTransportError("search request failed", cause).WithAttempt(7).WithInvocation(2)
//
//	if errors.Is(err, errors.ErrTransportFailed) { ... }
//
//	var te *errors.TransportError
//	if errors.As(err, &te) { ... }
//
//	if errors.IsRetryable(err) { ... }
//	if errors.IsUserFacing(err) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Search-related sentinel errors
var (
	// ErrTermRejected indicates raw input did not form a valid search term.
	ErrTermRejected = New("search term rejected")
	// ErrTransportFailed indicates a search transport invocation failed.
	ErrTransportFailed = New("search transport failed")
	// ErrAttemptSuperseded indicates a search attempt was replaced by a newer one.
	ErrAttemptSuperseded = New("search attempt superseded")
	// ErrCoordinatorClosed indicates the search coordinator has been closed.
	ErrCoordinatorClosed = New("search coordinator closed")
)

// Source-related sentinel errors
var (
	// ErrSourceFailed indicates a counter source could not produce a value.
	ErrSourceFailed = New("counter source failed")
	// ErrSourceValue indicates a counter source read a value that is not an integer.
	ErrSourceValue = New("counter source value is not an integer")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = New("invalid input")
	// ErrClosed indicates an operation on a component that has been torn down.
	ErrClosed = New("closed")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// PulseError is the base interface for all pulse errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type PulseError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// TransportError represents a failed search transport invocation.
// Every transport failure is treated as transient, so it is retryable by default.
//
// Example:
//
//	err := errors.NewTransportError("search request failed", cause)
//	err = err.WithTerm("cats").WithAttempt(3).WithInvocation(2)
//	fmt.Println(err) // "transport error [term=cats, attempt=3, invocation=2]: search request failed: ..."
type TransportError struct {
	baseError
	Term       string
	AttemptID  uint64
	Invocation int
}

// NewTransportError creates a new TransportError.
func NewTransportError(message string, cause error) *TransportError {
	return &TransportError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: false,
		},
	}
}

// WithTerm adds the searched term to the error context.
func (e *TransportError) WithTerm(term string) *TransportError {
	e.Term = term
	return e
}

// WithAttempt adds the attempt ID to the error context.
func (e *TransportError) WithAttempt(id uint64) *TransportError {
	e.AttemptID = id
	return e
}

// WithInvocation adds the 1-based invocation number within the attempt.
func (e *TransportError) WithInvocation(n int) *TransportError {
	e.Invocation = n
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *TransportError) WithRetryable(r bool) *TransportError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *TransportError) Error() string {
	var parts []string
	if e.Term != "" {
		parts = append(parts, fmt.Sprintf("term=%s", e.Term))
	}
	if e.AttemptID != 0 {
		parts = append(parts, fmt.Sprintf("attempt=%d", e.AttemptID))
	}
	if e.Invocation != 0 {
		parts = append(parts, fmt.Sprintf("invocation=%d", e.Invocation))
	}

	prefix := "transport error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("transport error [%s]", strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s: %s", prefix, e.baseError.Error())
}

// Is checks if this error matches the target.
func (e *TransportError) Is(target error) bool {
	if _, ok := target.(*TransportError); ok {
		return true
	}
	if target == ErrTransportFailed {
		return true
	}
	return e.baseError.Is(target)
}

// SourceError represents a counter source failure.
//
// Example:
//
//	err := errors.NewSourceError("read counter file", cause).WithSource("views")
type SourceError struct {
	baseError
	Source string
}

// NewSourceError creates a new SourceError.
func NewSourceError(message string, cause error) *SourceError {
	return &SourceError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: false,
		},
	}
}

// WithSource adds the source name to the error context.
func (e *SourceError) WithSource(name string) *SourceError {
	e.Source = name
	return e
}

// Error returns the formatted error message.
func (e *SourceError) Error() string {
	prefix := "source error"
	if e.Source != "" {
		prefix = fmt.Sprintf("source error [source=%s]", e.Source)
	}
	return fmt.Sprintf("%s: %s", prefix, e.baseError.Error())
}

// Is checks if this error matches the target.
func (e *SourceError) Is(target error) bool {
	if _, ok := target.(*SourceError); ok {
		return true
	}
	if target == ErrSourceFailed {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("text term cannot be empty")
//	err = err.WithField("text").WithValue("")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. Errors implementing PulseError report their own
// classification; errors wrapping ErrTransportFailed are retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pulseErr PulseError
	if As(err, &pulseErr) {
		return pulseErr.IsRetryable()
	}

	return Is(err, ErrTransportFailed)
}

// IsUserFacing returns true if the error message is safe to display to end users.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    showMessage(err)
//	} else {
//	    log.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var pulseErr PulseError
	if As(err, &pulseErr) {
		return pulseErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement PulseError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var pulseErr PulseError
	if As(err, &pulseErr) {
		return pulseErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to load corpus")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to read %s", path)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
