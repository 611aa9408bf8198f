// Package domainerrors defines coded errors that services return and transports
// translate. A code names the failure class; the message is safe to show the
// caller unless the code is CodeInternal.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	CodeBadRequest            Code = "bad_request"
	CodeValidation            Code = "validation_error"
	CodeInvalidInput          Code = "invalid_input"
	CodeUnauthorized          Code = "unauthorized"
	CodeForbidden             Code = "forbidden"
	CodeInsufficientAuthority Code = "insufficient_authority"
	CodeNotFound              Code = "not_found"
	CodeConflict              Code = "conflict"
	CodeRateLimited           Code = "rate_limited"
	CodeTransient             Code = "transient_store_failure"
	CodeTimeout               Code = "timeout"
	CodeInvariantViolation    Code = "invariant_violation"
	CodeInternal              Code = "internal_error"
)

// Error is a coded domain error, optionally wrapping an underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
// Wrapping nil returns nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost domain error in the chain,
// or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}

// Is forwards to errors.Is so callers can keep a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As forwards to errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
