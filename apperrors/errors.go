package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeUnavailable     = "UNAVAILABLE"
	CodeInternal        = "INTERNAL_ERROR"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

func InvalidArgument(message string) *AppError {
	return New(CodeInvalidArgument, message, http.StatusBadRequest, nil)
}

// Validation is an InvalidArgument carrying per-field messages.
func Validation(fields map[string]string) *AppError {
	e := New(CodeInvalidArgument, "validation failed", http.StatusBadRequest, nil)
	e.Fields = fields
	return e
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden, nil)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict, nil)
}

func Unauthenticated(message string) *AppError {
	return New(CodeUnauthenticated, message, http.StatusUnauthorized, nil)
}

func TooManyRequests(message string) *AppError {
	return New(CodeTooManyRequests, message, http.StatusTooManyRequests, nil)
}

func Unavailable(message string, err error) *AppError {
	return New(CodeUnavailable, message, http.StatusServiceUnavailable, err)
}

func Internal(message string, err error) *AppError {
	return New(CodeInternal, message, http.StatusInternalServerError, err)
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// From returns err as an AppError, treating anything unknown as internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Something went wrong", err)
}
