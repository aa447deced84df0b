// Package errors provides structured error types for objgraph.
//
// Every failure raised by the codec, the registries, the snapshot store and the
// HTTP service carries a machine-readable [Code], so callers can branch on the
// failure class without parsing messages:
//
//	env, err := s.Serialize(v)
//	if errors.Is(err, errors.ErrCodeTooDeep) {
//	    // raise the depth budget or flatten the graph
//	}
//
// Messages name the offending entity (registry name, record index, property
// key or Go type) so a failure can be diagnosed without a debugger.
//
// # Error Codes
//
// Codec errors are terminal for the call that raised them; serialize and
// deserialize never return partial results:
//   - UNSUPPORTED_TYPE: value kind with no portable representation
//   - UNREGISTERED_CALLABLE: func value not bound to a name
//   - TOO_DEEP: recursion budget exhausted
//   - MALFORMED_OBJECT: object the default codec cannot represent
//   - NAME_CONFLICT, INVALID_NAME, REGISTRY_FROZEN: registration failures
//   - UNRESOLVED_NAMED_REFERENCE, NOT_YET_BUILT, OUT_OF_RANGE,
//     CIRCULAR_ANCESTRY, MALFORMED_RECORD: decode-time envelope failures
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Encode errors
	ErrCodeUnsupportedType      Code = "UNSUPPORTED_TYPE"
	ErrCodeUnregisteredCallable Code = "UNREGISTERED_CALLABLE"
	ErrCodeTooDeep              Code = "TOO_DEEP"
	ErrCodeMalformedObject      Code = "MALFORMED_OBJECT"

	// Registration errors
	ErrCodeNameConflict   Code = "NAME_CONFLICT"
	ErrCodeInvalidName    Code = "INVALID_NAME"
	ErrCodeRegistryFrozen Code = "REGISTRY_FROZEN"

	// Decode errors
	ErrCodeUnresolvedName   Code = "UNRESOLVED_NAMED_REFERENCE"
	ErrCodeNotYetBuilt      Code = "NOT_YET_BUILT"
	ErrCodeOutOfRange       Code = "OUT_OF_RANGE"
	ErrCodeCircularAncestry Code = "CIRCULAR_ANCESTRY"
	ErrCodeMalformedRecord  Code = "MALFORMED_RECORD"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeSnapshotNotFound Code = "SNAPSHOT_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
