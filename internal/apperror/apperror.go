// Package apperror defines the error kinds surfaced by the services and
// their mapping onto HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an application error.
type Kind int

const (
	// Internal is an unexpected failure inside this process.
	Internal Kind = iota
	// NotFound means a referenced user, post or comment does not exist.
	NotFound
	// Unauthorized means the actor is not allowed to touch the resource (not its author).
	Unauthorized
	// Unauthenticated means the caller's identity could not be established.
	Unauthenticated
	// InvalidOperation is a well-formed request that makes no sense, like following yourself.
	InvalidOperation
	// InvalidArgument is a malformed or out-of-range parameter.
	InvalidArgument
	// Conflict means the resource already exists.
	Conflict
	// UpstreamFailure means the store or the media host failed.
	UpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Unauthenticated:
		return "unauthenticated"
	case InvalidOperation:
		return "invalid_operation"
	case InvalidArgument:
		return "invalid_argument"
	case Conflict:
		return "conflict"
	case UpstreamFailure:
		return "upstream_failure"
	default:
		return "internal"
	}
}

// AppError carries a kind, a user-facing message and the underlying cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for the error kind.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusForbidden
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidOperation, InvalidArgument:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case UpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NewNotFound(message string) *AppError {
	return New(NotFound, message, nil)
}

func NewUnauthorized(message string) *AppError {
	return New(Unauthorized, message, nil)
}

func NewUnauthenticated(message string) *AppError {
	return New(Unauthenticated, message, nil)
}

func NewInvalidOperation(message string) *AppError {
	return New(InvalidOperation, message, nil)
}

func NewInvalidArgument(message string) *AppError {
	return New(InvalidArgument, message, nil)
}

func NewConflict(message string) *AppError {
	return New(Conflict, message, nil)
}

func NewUpstream(message string, err error) *AppError {
	return New(UpstreamFailure, message, err)
}

func NewInternal(message string, err error) *AppError {
	return New(Internal, message, err)
}

// As extracts the first *AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries an AppError of the given kind.
func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// KindOf returns the kind of err, Internal when err is not an AppError.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return Internal
}
