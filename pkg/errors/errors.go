// Package errors provides structured error types for rocks-admin.
//
// The codes mirror the failure taxonomy of a rocks server query:
//   - PARSE_ERROR: a table document (manifest or rockspec) could not be evaluated
//   - NOT_FOUND, PACKAGE_NOT_FOUND, VERSION_NOT_FOUND: lookup misses
//   - FETCH_ERROR: the transport returned a non-2xx status or failed outright
//   - CONTRACT_VIOLATION: a programming error upstream (e.g. bumping a
//     non-semantic version); callers treat these as fatal
//
// # Usage
//
//	err := errors.New(errors.ErrCodePackageNotFound, "package %s not found", name)
//	if errors.Is(err, errors.ErrCodePackageNotFound) {
//	    // report and continue with siblings
//	}
//
//	err := errors.Wrap(errors.ErrCodeParse, luaErr, "evaluate %s", file)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidVersion Code = "INVALID_VERSION"
	ErrCodeParse          Code = "PARSE_ERROR"

	// Lookup misses
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"
	ErrCodeVersionNotFound Code = "VERSION_NOT_FOUND"

	// Transport
	ErrCodeFetch Code = "FETCH_ERROR"

	// Programming errors
	ErrCodeContractViolation Code = "CONTRACT_VIOLATION"
	ErrCodeInternal          Code = "INTERNAL_ERROR"
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
// Only the outermost *Error in the chain is consulted.
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

// IsContractViolation reports whether err signals a programming error
// rather than a business-logic failure.
func IsContractViolation(err error) bool {
	return Is(err, ErrCodeContractViolation)
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
