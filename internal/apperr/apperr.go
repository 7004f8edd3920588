// Package apperr carries the error taxonomy shared by the core and the transport layer.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for callers; the API layer maps it to a status code.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindOutOfRange      Kind = "OUT_OF_RANGE"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindCannotCustomize Kind = "CANNOT_CUSTOMIZE"
	KindInternal        Kind = "INTERNAL"
)

// Error is the structured error returned by services: code + message + optional details.
type Error struct {
	Kind       Kind
	Message    string
	Details    any      // structured payload for remediation, e.g. blocking plans
	Violations []string // every validation problem found, not just the first
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if len(e.Violations) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Violations, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string, violations ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Violations: violations}
}

func OutOfRange(format string, args ...any) *Error {
	return &Error{Kind: KindOutOfRange, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource string, id any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", resource, id)}
}

func Conflict(message string, details any) *Error {
	return &Error{Kind: KindConflict, Message: message, Details: details}
}

func CannotCustomize(format string, args ...any) *Error {
	return &Error{Kind: KindCannotCustomize, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure (storage, encoding) without leaking it as a kind.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
