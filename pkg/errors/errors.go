// Package errors provides structured error types for the dataset pipelines.
//
// Each error carries a machine-readable code so the CLI can report which
// dataset and stage failed without string matching, and so one pipeline's
// failure classification never depends on another's error text.
//
// # Error Codes
//
// Codes follow the pipeline's failure taxonomy: parse-level conditions
// (MALFORMED_LINE, DANGLING_EDGE) that are recoverable by policy and
// surface as structured warning fields rather than errors, dataset
// conditions (EMPTY_HIERARCHY, NO_ROOT_FOUND, DATASET_IO) that are fatal
// for one pipeline only, and DISCONNECTED_METRIC for degraded analytics.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyHierarchy, "node table %s has no rows", path)
//	if errors.Is(err, errors.ErrCodeEmptyHierarchy) {
//	    // skip the tree pipeline, keep the others running
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the pipeline failure taxonomy.
const (
	// Recoverable parse conditions (skip-and-continue policy, reported
	// as warning fields)
	ErrCodeMalformedLine Code = "MALFORMED_LINE"
	ErrCodeDanglingEdge  Code = "DANGLING_EDGE"

	// Per-dataset fatal conditions
	ErrCodeEmptyHierarchy Code = "EMPTY_HIERARCHY"
	ErrCodeNoRootFound    Code = "NO_ROOT_FOUND"
	ErrCodeDatasetIO      Code = "DATASET_IO"

	// Degraded analytics
	ErrCodeDisconnectedMetric Code = "DISCONNECTED_METRIC"

	// General
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
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
