// Package apperr classifies failures so the HTTP boundary can map them to
// status codes without knowing where they came from.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	InvalidInput
	Unauthorized
	Conflict
	NotFound
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_request"
	case Unauthorized:
		return "unauthorized"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	default:
		return "internal_error"
	}
}

// Status is the HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case InvalidInput:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err, keeping it in the chain for logs and errors.Is.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first classified error in the chain, or
// Internal when nothing classified it.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-safe message, or a generic one for unclassified errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Internal Server Error"
}
