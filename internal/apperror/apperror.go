// Package apperror defines the error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidRequest
	KindConflict
)

// Error is a service-level failure that maps onto one HTTP status
type Error struct {
	Kind          Kind
	Message       string
	NeedsApproval bool
	Err           error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind
func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Title is the short "error" field of the JSON body
func (e *Error) Title() string {
	switch e.Kind {
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "Not Found"
	case KindInvalidRequest:
		return "Invalid request"
	case KindConflict:
		return "Conflict"
	default:
		return "Internal Server Error"
	}
}

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// NeedsApproval is a Forbidden error telling the caller it may request
// edit access instead.
func NeedsApproval(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg, NeedsApproval: true}
}

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func InvalidRequest(msg string) *Error { return &Error{Kind: KindInvalidRequest, Message: msg} }

func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// As extracts an *Error from err. Anything else is reported as Internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Unexpected error", err)
}

// IsKind reports whether err is an *Error of kind k
func IsKind(err error, k Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == k
}
