package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain failure carrying the stable code and HTTP status clients
// see in the response envelope. Errors with a status below 400 are notices:
// the operation was not applied but the request itself succeeded.
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

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is compares codes, so a clone with a custom message still matches its sentinel.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}

// Notice reports whether the error is informational rather than a failure.
func (e *Error) Notice() bool {
	return e != nil && e.Status < http.StatusBadRequest
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches a code and status to an underlying cause.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Authentication and generic request failures.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Catalog, membership and ledger outcomes.
var (
	ErrDuplicate       = New("DUPLICATE", http.StatusConflict, "duplicate record")
	ErrOutOfStock      = New("OUT_OF_STOCK", http.StatusConflict, "no copies available")
	ErrAlreadyReturned = New("ALREADY_RETURNED", http.StatusOK, "loan already returned")
)

// FromError finds the *Error in err's chain, treating anything else as internal.
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

// AsNotice returns the informational *Error in err's chain, if there is one.
func AsNotice(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e.Notice() {
		return e, true
	}
	return nil, false
}

// Clone copies a sentinel, optionally replacing its message.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
