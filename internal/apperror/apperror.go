package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the repository and auth layers. Handlers map these
// to HTTP statuses and redirects; nothing crosses the repository boundary
// as an untyped failure.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrSessionExpired     = errors.New("session expired")
)

type AppError struct {
	Err     error  // sentinel, for errors.Is checks
	Message string // human-readable message surfaced to the view
	Field   string // optional field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id uint) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %d not found", resource, id),
	}
}

func Validation(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid email or password",
	}
}
