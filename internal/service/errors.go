// Package service holds the booking rules.  Handlers call into it with an
// authenticated model.Principal; it talks to storage through the narrow
// interfaces declared in stores.go.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.  Handlers translate kinds to HTTP
// status codes in one place.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	}
	return "internal"
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the error type returned by every service method.  Message is
// safe to show to clients; Err is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func notFound(msg string) *Error     { return newError(KindNotFound, msg) }
func conflict(msg string) *Error     { return newError(KindConflict, msg) }
func forbidden(msg string) *Error    { return newError(KindForbidden, msg) }
func unauthorized(msg string) *Error { return newError(KindUnauthorized, msg) }

func invalid(field, msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg, Fields: []FieldError{{Field: field, Message: msg}}}
}

func internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the Kind carried by err, or KindInternal for foreign
// errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
