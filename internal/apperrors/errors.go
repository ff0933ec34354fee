package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so transports can map it to a status
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindAuthz
	KindNotFound
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "authentication"
	case KindAuthz:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error is the error type returned by the service layer
type Error struct {
	Kind    Kind
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

// Validation reports missing or invalid input
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// Auth reports bad credentials or a missing, invalid or expired token
func Auth(message string) error {
	return &Error{Kind: KindAuth, Message: message}
}

// Authz reports an authenticated principal without the required role
func Authz(message string) error {
	return &Error{Kind: KindAuthz, Message: message}
}

// NotFound reports a resource that is absent or not owned by the caller
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Store wraps a persistence failure
func Store(message string, err error) error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// KindOf returns the Kind of err, or KindUnknown for foreign errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is reports whether err is an application error of the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
