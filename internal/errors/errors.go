package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ProtectionViolation indicates a write was attempted under a protected path
	ProtectionViolation ErrorCode = "PROTECTION_VIOLATION"
	// NotFound indicates a referenced artifact, file, or backup does not exist
	NotFound ErrorCode = "NOT_FOUND"
	// UnknownStrategy indicates an unsupported transformation strategy was supplied
	UnknownStrategy ErrorCode = "UNKNOWN_STRATEGY"
	// UnknownOperation indicates an unsupported operation type was supplied
	UnknownOperation ErrorCode = "UNKNOWN_OPERATION"
	// UnknownTier indicates an unsupported analysis tier was supplied
	UnknownTier ErrorCode = "UNKNOWN_TIER"
	// ParseError indicates a single file failed to parse
	ParseError ErrorCode = "PARSE_ERROR"
	// TransformationFailed indicates one operation in a plan failed
	TransformationFailed ErrorCode = "TRANSFORMATION_FAILED"
	// ValidationFailed indicates generated code failed a validation rule
	ValidationFailed ErrorCode = "VALIDATION_FAILED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ArkError represents an ARK error with a stable code, message and cause
type ArkError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new ArkError
func New(code ErrorCode, message string) *ArkError {
	return &ArkError{Code: code, Message: message}
}

// Newf creates a new ArkError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ArkError {
	return &ArkError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new ArkError wrapping a cause
func Wrap(code ErrorCode, message string, cause error) *ArkError {
	return &ArkError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *ArkError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ArkError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ArkError) WithDetails(details interface{}) *ArkError {
	e.Details = details
	return e
}

// CodeOf returns the error code of err, or InternalError for foreign errors.
func CodeOf(err error) ErrorCode {
	var ae *ArkError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return InternalError
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code ErrorCode) bool {
	var ae *ArkError
	if stderrors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// IsFatal reports whether an error aborts the current stage. Per-file and
// per-operation failures (parse, transformation, and validation errors) are
// recorded as structured entries instead of being raised; every other
// ArkError is fatal for its stage.
func IsFatal(err error) bool {
	switch CodeOf(err) {
	case ParseError, TransformationFailed, ValidationFailed:
		return false
	default:
		return true
	}
}
