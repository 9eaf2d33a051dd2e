// Package apperr defines the error taxonomy shared by all resource services.
// Every failure surfaced to a caller is one of these kinds; the response
// package maps kinds to HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error class.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindDuplicateKey       Kind = "duplicate_key"
	KindNotFound           Kind = "not_found"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindForbidden          Kind = "forbidden"
	KindStorage            Kind = "storage_unavailable"
)

// Error is a structured application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation reports a missing or malformed field.
func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, fmt.Sprintf(format, args...))
}

// Duplicate reports a unique-constraint violation.
func Duplicate(format string, args ...interface{}) *Error {
	return newError(KindDuplicateKey, fmt.Sprintf(format, args...))
}

// NotFound reports an absent entity.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, fmt.Sprintf(format, args...))
}

// InvalidCredentials reports an authentication failure.
func InvalidCredentials(message string) *Error {
	return newError(KindInvalidCredentials, message)
}

// Forbidden reports a role or ownership failure.
func Forbidden(message string) *Error {
	return newError(KindForbidden, message)
}

// Storage wraps a transient storage/driver failure.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage unavailable", Err: err}
}

// KindOf returns the kind of err, or KindStorage for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStorage
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
