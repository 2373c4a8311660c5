package api

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error that can be rendered to API consumers.
// Only Message is ever sent to the client; Internal is for logs.
type AppError struct {
	Message    string
	StatusCode int
	Internal   error
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Internal = err
	return &cpy
}

var (
	ErrEmptyText = &AppError{
		Message:    "empty text",
		StatusCode: http.StatusBadRequest,
	}
	ErrTextTooLarge = &AppError{
		Message:    "text too large",
		StatusCode: http.StatusRequestEntityTooLarge,
	}
	ErrBadRequest = &AppError{
		Message:    "invalid request",
		StatusCode: http.StatusBadRequest,
	}
	ErrMethodNotAllowed = &AppError{
		Message:    "method not allowed",
		StatusCode: http.StatusMethodNotAllowed,
	}
	ErrInternal = &AppError{
		Message:    "internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// FromError converts any error into an AppError, defaulting to ErrInternal.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithInternal(err)
}
