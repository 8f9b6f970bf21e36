package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error unwraps to exactly one of them.
var (
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
)

// Error is a typed failure returned to the request layer.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewErrMissingField(field string) *Error {
	return newError(ErrValidation, "%s is required", field)
}

func NewErrUnknownGame(game string) *Error {
	return newError(ErrValidation, "unknown game %q", game)
}

func NewErrNegativePoints(points int64) *Error {
	return newError(ErrValidation, "points must not be negative, got %d", points)
}

func NewErrInvalidField(field, reason string) *Error {
	return newError(ErrValidation, "%s is invalid: %s", field, reason)
}

func NewErrUsernameTaken(username string) *Error {
	return newError(ErrConflict, "username %s is already taken", username)
}

func NewErrEmailTaken(email string) *Error {
	return newError(ErrConflict, "email %s is already taken", email)
}

func NewErrInvalidCredentials() *Error {
	return newError(ErrAuthentication, "invalid credentials")
}

func NewErrInvalidToken() *Error {
	return newError(ErrAuthentication, "invalid or expired token")
}

func NewErrUnauthorized() *Error {
	return newError(ErrUnauthorized, "authentication required")
}

func NewErrUserNotFound(id string) *Error {
	return newError(ErrNotFound, "user %s not found", id)
}
