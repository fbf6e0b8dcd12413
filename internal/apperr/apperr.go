// Package apperr defines the typed application errors every layer above the
// repository speaks. A repository never lets a raw backend error escape; it is
// classified here first, so handlers can map errors to HTTP statuses without
// knowing anything about GORM.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the class of an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindBadRequest
)

// Error is the single error type exchanged between layers. Fields holds
// per-field validation messages; it is only populated for KindValidation.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Code: "validation_error", Message: msg, Fields: fields}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: "not_found", Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Code: "unauthorized", Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Code: "forbidden", Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Code: "conflict", Message: msg}
}

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Code: "bad_request", Message: msg}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "internal_error", Message: msg, Err: err}
}

// From returns err as an *Error, wrapping unclassified errors as internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("unexpected error", err)
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
