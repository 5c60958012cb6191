// Package errors provides structured error types for fontfetch.
//
// Every failure that ends a font acquisition carries one of the codes below,
// so the CLI and the HTTP server can report what went wrong without parsing
// messages.
//
// # Error Codes
//
//   - INVALID_*: the request itself was rejected before any work started
//   - METADATA_FETCH_FAILED, NO_DOWNLOAD_URL, DOWNLOAD_FAILED, NAME_UNRESOLVABLE:
//     an acquisition stage failed
//   - NOT_FOUND, NETWORK_ERROR: collaborator failures
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoDownloadURL, "no file for %s", f)
//	if errors.Is(err, errors.ErrCodeNoDownloadURL) {
//	    // fall back to a builtin face
//	}
//
//	err := errors.Wrap(errors.ErrCodeDownload, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFont   Code = "INVALID_FONT"
	ErrCodeInvalidURL    Code = "INVALID_URL"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Acquisition stages
	ErrCodeMetadataFetch    Code = "METADATA_FETCH_FAILED"
	ErrCodeNoDownloadURL    Code = "NO_DOWNLOAD_URL"
	ErrCodeDownload         Code = "DOWNLOAD_FAILED"
	ErrCodeNameUnresolvable Code = "NAME_UNRESOLVABLE"

	// Collaborator errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"

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
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the status the font server answers with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFont, ErrCodeInvalidURL:
		return 400
	case ErrCodeNotFound, ErrCodeNoDownloadURL:
		return 404
	case ErrCodeMetadataFetch, ErrCodeDownload, ErrCodeNetwork:
		return 502
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
