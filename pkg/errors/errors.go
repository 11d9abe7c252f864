// Package errors provides structured error types for studymap.
//
// Every failure surfaced by the render pipeline carries one code from a
// small closed set, so the CLI can report each kind of failure distinctly:
//   - INPUT_NOT_FOUND: a required vector dataset is missing
//   - INVALID_*: malformed scene files, flags or datasets
//   - REPROJECTION_FAILED: a dataset's CRS cannot be converted to lon/lat
//   - NETWORK_ERROR: basemap imagery could not be fetched
//   - RENDER_FAILED / WRITE_FAILED: drawing or PNG output failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidScene, "bbox is empty")
//	if errors.Is(err, errors.ErrCodeInvalidScene) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInputNotFound       Code = "INPUT_NOT_FOUND"
	ErrCodeInvalidInput        Code = "INVALID_INPUT"
	ErrCodeInvalidScene        Code = "INVALID_SCENE"
	ErrCodeUnsupportedGeometry Code = "UNSUPPORTED_GEOMETRY"

	// Processing errors
	ErrCodeReprojection Code = "REPROJECTION_FAILED"
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeRender       Code = "RENDER_FAILED"
	ErrCodeWrite        Code = "WRITE_FAILED"

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

// NotFoundError reports one or more missing input datasets.
// It is wrapped in an *Error with ErrCodeInputNotFound.
type NotFoundError struct {
	Paths []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if len(e.Paths) == 1 {
		return "file not found: " + e.Paths[0]
	}
	return "files not found: " + strings.Join(e.Paths, ", ")
}

// InputNotFound builds an ErrCodeInputNotFound error that names every
// expected path, not just the first missing one.
func InputNotFound(expected []string) *Error {
	return &Error{
		Code:    ErrCodeInputNotFound,
		Message: fmt.Sprintf("one or more input files not found; expected at: %s", strings.Join(expected, " and ")),
		Cause:   &NotFoundError{Paths: expected},
	}
}

// MissingPaths returns the expected paths recorded in an input-not-found
// error, or nil if err is not one.
func MissingPaths(err error) []string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Paths
	}
	return nil
}
