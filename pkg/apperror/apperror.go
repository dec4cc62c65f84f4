// Package apperror defines the error taxonomy shared by services and the
// HTTP error translator. Every error that reaches a client is one of these
// kinds; anything else is reported as an unhandled server error.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnhandled Kind = iota
	KindValidation
	KindNotFound
	KindAuthentication
	KindAuthorization
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindUpstream:
		return "upstream"
	default:
		return "unhandled"
	}
}

// Error carries a client-facing message and the HTTP status it maps to.
type Error struct {
	Kind    Kind
	Status  int
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

func newError(kind Kind, status int, msg string, err error) *Error {
	return &Error{Kind: kind, Status: status, Message: msg, Err: err}
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, http.StatusBadRequest, fmt.Sprintf(format, args...), nil)
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, http.StatusNotFound, fmt.Sprintf(format, args...), nil)
}

func Unauthenticated(format string, args ...any) *Error {
	return newError(KindAuthentication, http.StatusUnauthorized, fmt.Sprintf(format, args...), nil)
}

// Forbidden is a role violation.
func Forbidden(format string, args ...any) *Error {
	return newError(KindAuthorization, http.StatusForbidden, fmt.Sprintf(format, args...), nil)
}

// NotOwner is an ownership violation. It is an authorization failure that
// answers 401, matching the public API contract for mutations by non-owners.
func NotOwner(format string, args ...any) *Error {
	return newError(KindAuthorization, http.StatusUnauthorized, fmt.Sprintf(format, args...), nil)
}

// Upstream wraps a failure of an external collaborator (mail, geocoder, object store).
func Upstream(err error, format string, args ...any) *Error {
	return newError(KindUpstream, http.StatusInternalServerError, fmt.Sprintf(format, args...), err)
}

func Unhandled(err error) *Error {
	return newError(KindUnhandled, http.StatusInternalServerError, "Server Error", err)
}

// From returns err as an *Error, or nil when it is not part of the taxonomy.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	ae := From(err)
	return ae != nil && ae.Kind == kind
}
