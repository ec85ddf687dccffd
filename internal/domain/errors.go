package domain

import (
	"errors"
	"fmt"
)

// Application error codes
const (
	EINVALID      = "invalid"                 // Invalid input or validation failure
	EUNAUTHORIZED = "unauthorized"            // Authentication required
	EFORBIDDEN    = "forbidden"               // Permission denied
	ENOTFOUND     = "not_found"               // Resource not found
	ECONFLICT     = "conflict"                // Resource conflict (e.g., duplicate)
	ERATELIMIT    = "rate_limit"              // Rate limit exceeded
	EINTERNAL     = "internal"                // Internal server error
	ETRANSITION   = "invalid_transition"      // Illegal workflow edge
	EMISSINGFIELD = "missing_field"           // Conditionally required field absent
	EANSWERED     = "already_answered"        // Feedback is write-once
	ESTATE        = "invalid_state"           // Report not in the required status
	EPENDING      = "pending_notice_conflict" // A feedback-less authority notice exists
	ESTALE        = "stale_write"             // Status changed between read and write
)

// Error represents an application error with structured information.
type Error struct {
	Code    string // Machine-readable error code
	Op      string // Operation that failed (e.g., "workflow.transition")
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new Error with the given code, operation, and formatted message.
func Errorf(code, op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode returns the code of the root error, or EINTERNAL if none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		// For internal errors, return generic message
		if e.Code == EINTERNAL {
			return "An internal error occurred. Please try again later."
		}
		return e.Message
	}
	return "An internal error occurred. Please try again later."
}

// ErrorOp returns the operation of the root error, if any.
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// Convenience constructors for common error types

// NotFound creates a not found error.
func NotFound(op, resource, id string) *Error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s with ID %q not found", resource, id),
	}
}

// Invalid creates a validation error.
func Invalid(op, message string) *Error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// MissingField creates an error for a conditionally required field that is absent.
func MissingField(op, field string) *Error {
	return &Error{
		Code:    EMISSINGFIELD,
		Op:      op,
		Message: fmt.Sprintf("%s is required", field),
	}
}

// InvalidTransition creates an error for an illegal workflow edge. The message
// carries the attempted edge and the legal target set so the caller can correct
// the request and retry.
func InvalidTransition(op string, from, to ReportStatus) *Error {
	return &Error{
		Code:    ETRANSITION,
		Op:      op,
		Message: fmt.Sprintf("cannot transition from %s to %s (allowed: %v)", from, to, from.AvailableTransitions()),
	}
}

// InvalidState creates an error for an operation attempted while the report is
// not in the required status.
func InvalidState(op, message string) *Error {
	return &Error{
		Code:    ESTATE,
		Op:      op,
		Message: message,
	}
}

// AlreadyAnswered creates an error for a second feedback write on the same entity.
func AlreadyAnswered(op, resource, id string) *Error {
	return &Error{
		Code:    EANSWERED,
		Op:      op,
		Message: fmt.Sprintf("feedback for %s %q has already been recorded", resource, id),
	}
}

// ConflictingPendingNotice creates an error for a duplicate pending authority notice.
func ConflictingPendingNotice(op, reportID string) *Error {
	return &Error{
		Code:    EPENDING,
		Op:      op,
		Message: fmt.Sprintf("report %q already has an authority notice awaiting feedback", reportID),
	}
}

// ConcurrentModification creates an error for a stale-status write race.
func ConcurrentModification(op, reportID string) *Error {
	return &Error{
		Code:    ESTALE,
		Op:      op,
		Message: fmt.Sprintf("report %q was modified concurrently; re-read and retry", reportID),
	}
}

// Unauthorized creates an authentication error.
func Unauthorized(op, message string) *Error {
	return &Error{
		Code:    EUNAUTHORIZED,
		Op:      op,
		Message: message,
	}
}

// Forbidden creates a permission error.
func Forbidden(op, message string) *Error {
	return &Error{
		Code:    EFORBIDDEN,
		Op:      op,
		Message: message,
	}
}

// Conflict creates a conflict error.
func Conflict(op, message string) *Error {
	return &Error{
		Code:    ECONFLICT,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error, wrapping the underlying error.
func Internal(err error, op, message string) *Error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// RateLimit creates a rate limit error.
func RateLimit(op string) *Error {
	return &Error{
		Code:    ERATELIMIT,
		Op:      op,
		Message: "Too many requests. Please try again later.",
	}
}
