// Package errors provides structured error types for the layerview core.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and serve API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that always name the offending field
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: validation failures (options, data buffers, colors, domains)
//   - NOT_FOUND_*: lookup failures (aliases, layers, indices)
//   - EMPTY_RECT: geometric domain errors (degenerate source rectangles)
//   - COLLABORATOR_*: failures of external collaborators (colormap
//     resolution, image loading), wrapped with the original cause
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidOption, "opacity must be in [0, 1], got %v", v)
//	if errors.Is(err, errors.ErrCodeInvalidOption) {
//	    // Handle validation error
//	}
//
//	// Wrap collaborator failures
//	err := errors.Wrap(errors.ErrCodeCollaboratorImage, origErr, "load image %q", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidOption   Code = "INVALID_OPTION"
	ErrCodeInvalidData     Code = "INVALID_DATA"
	ErrCodeInvalidColor    Code = "INVALID_COLOR"
	ErrCodeInvalidColormap Code = "INVALID_COLORMAP"
	ErrCodeInvalidDomain   Code = "INVALID_DOMAIN"
	ErrCodeInvalidAlias    Code = "INVALID_ALIAS"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidEvent    Code = "INVALID_EVENT"

	// Lookup errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeLayerNotFound Code = "NOT_FOUND_LAYER"
	ErrCodeAliasNotFound Code = "NOT_FOUND_ALIAS"
	ErrCodeIndexRange    Code = "NOT_FOUND_INDEX"

	// Geometric domain errors
	ErrCodeEmptyRect Code = "EMPTY_RECT"

	// Collaborator errors
	ErrCodeCollaboratorColormap Code = "COLLABORATOR_COLORMAP"
	ErrCodeCollaboratorImage    Code = "COLLABORATOR_IMAGE"

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

// IsValidation reports whether err carries any INVALID_* code.
func IsValidation(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case ErrCodeInvalidOption, ErrCodeInvalidData, ErrCodeInvalidColor,
		ErrCodeInvalidColormap, ErrCodeInvalidDomain, ErrCodeInvalidAlias,
		ErrCodeInvalidConfig, ErrCodeInvalidEvent,
		ErrCodeCollaboratorColormap, ErrCodeCollaboratorImage:
		return true
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
