// Package errors defines the typed errors services return and handlers
// translate into response envelopes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries a stable machine code, an HTTP status, and a
// human-readable message. Err optionally wraps the underlying cause,
// which never reaches API responses.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

// Unwrap exposes the cause to errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds an Error with no cause.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an Error around a cause.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Clone copies a sentinel, optionally overriding its message. Sentinels
// are shared; mutating them in place would leak one caller's message
// into another's response.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	c := *err
	if message != "" {
		c.Message = message
	}
	return &c
}

// FromError normalises an arbitrary error into an *Error, defaulting to
// an internal error for plain ones.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Sentinels for the error categories the API emits. Services clone
// these with case-specific messages.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrStoreWrite         = New("STORE_WRITE_FAILED", http.StatusInternalServerError, "failed to persist changes")
	ErrVersionConflict    = New("VERSION_CONFLICT", http.StatusConflict, "collection was modified by another writer")
)
