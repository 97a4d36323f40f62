// Package errors provides structured error types for depvet.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library layers
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_UNAVAILABLE: External service failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidIdentifier, "cannot read manifest: %s", path)
//	if errors.Is(err, errors.ErrCodeInvalidIdentifier) {
//	    // Handle resolution failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRepositoryUnavailable, origErr, "fetch workflows for %s", repo)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Dependency resolution errors
	ErrCodeInvalidIdentifier Code = "INVALID_IDENTIFIER"
	ErrCodeInvalidPackage    Code = "INVALID_PACKAGE"
	ErrCodeInvalidManifest   Code = "INVALID_MANIFEST"

	// External service errors
	ErrCodeRegistryUnavailable   Code = "REGISTRY_UNAVAILABLE"
	ErrCodeRepositoryUnavailable Code = "REPOSITORY_UNAVAILABLE"
	ErrCodeInvalidRepositoryURL  Code = "INVALID_REPOSITORY_URL"

	// Criterion evaluation errors
	ErrCodeMalformedVersion    Code = "MALFORMED_VERSION"
	ErrCodeCoverageUnparseable Code = "COVERAGE_UNPARSEABLE"
	ErrCodeMissingSourceURL    Code = "MISSING_SOURCE_URL"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
