package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for devplan errors.
type ErrorCode string

// Plan document error codes
const (
	PLAN_PARSE_FAILED        ErrorCode = "PLAN_PARSE_FAILED"
	PLAN_SCHEMA_INVALID      ErrorCode = "PLAN_SCHEMA_INVALID"
	PLAN_VERSION_UNSUPPORTED ErrorCode = "PLAN_VERSION_UNSUPPORTED"
	PLAN_NOT_FOUND           ErrorCode = "PLAN_NOT_FOUND"
	PHASE_CYCLE              ErrorCode = "PHASE_CYCLE"
)

// Validation error codes
const (
	VALIDATION_FAILED ErrorCode = "VALIDATION_FAILED"
)

// Snapshot error codes
const (
	SNAPSHOT_NOT_FOUND      ErrorCode = "SNAPSHOT_NOT_FOUND"
	SNAPSHOT_CONFLICT       ErrorCode = "SNAPSHOT_CONFLICT"
	SNAPSHOT_CAPTURE_FAILED ErrorCode = "SNAPSHOT_CAPTURE_FAILED"
)

// Filesystem error codes
const (
	FILE_NOT_FOUND         ErrorCode = "FILE_NOT_FOUND"
	FILE_PERMISSION_DENIED ErrorCode = "FILE_PERMISSION_DENIED"
	FILE_IO_ERROR          ErrorCode = "FILE_IO_ERROR"
	FILE_WRITE_FAILED      ErrorCode = "FILE_WRITE_FAILED"
	PATH_INVALID           ErrorCode = "PATH_INVALID"
)

// Execution error codes
const (
	APPLY_HALTED    ErrorCode = "APPLY_HALTED"
	ENGINE_BUSY     ErrorCode = "ENGINE_BUSY"
	ROLLBACK_HALTED ErrorCode = "ROLLBACK_HALTED"
)

// Database error codes
const (
	DB_OPEN_FAILED      ErrorCode = "DB_OPEN_FAILED"
	DB_MIGRATION_FAILED ErrorCode = "DB_MIGRATION_FAILED"
	DB_QUERY_FAILED     ErrorCode = "DB_QUERY_FAILED"
)

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// DevplanError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type DevplanError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *DevplanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *DevplanError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a DevplanError with the same Code.
func (e *DevplanError) Is(target error) bool {
	var devplanErr *DevplanError
	if errors.As(target, &devplanErr) {
		return e.Code == devplanErr.Code
	}
	return false
}

// NewError creates a new non-retryable DevplanError with the given code and message.
func NewError(code ErrorCode, message string) *DevplanError {
	return &DevplanError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable DevplanError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., a busy database).
func NewRetryableError(code ErrorCode, message string) *DevplanError {
	return &DevplanError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable DevplanError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *DevplanError {
	return &DevplanError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// CodeOf extracts the ErrorCode from err if it is (or wraps) a DevplanError.
// Returns an empty code and false otherwise.
func CodeOf(err error) (ErrorCode, bool) {
	var devplanErr *DevplanError
	if errors.As(err, &devplanErr) {
		return devplanErr.Code, true
	}
	return "", false
}

// HasCode reports whether err is (or wraps) a DevplanError with the given code.
func HasCode(err error, code ErrorCode) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}
