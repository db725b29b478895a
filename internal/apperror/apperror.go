// Package apperror centralizes the domain error taxonomy so services can
// return typed errors and handlers can map them to HTTP status codes in one place.
package apperror

import (
	"fmt"
	"net/http"
)

// ErrorType 错误类别
type ErrorType int

const (
	// InternalError is an unexpected store/hash/signing failure.
	InternalError ErrorType = iota
	// BadRequestError means a required field is missing or malformed.
	BadRequestError
	// ConflictError means a duplicate username or email.
	ConflictError
	// InvalidCredentialsError covers both unknown email and wrong password.
	// The two cases are intentionally indistinguishable.
	InvalidCredentialsError
	// UnauthorizedError means a missing, invalid or expired token.
	UnauthorizedError
	// ForbiddenError means a valid token but the wrong owner.
	ForbiddenError
	// NotFoundError means no such post or user.
	NotFoundError
	// UploadError means a disallowed attachment type or size.
	UploadError
)

// AppError carries the error type, a client-safe message and an optional
// underlying cause that is only ever logged, never returned to callers.
type AppError struct {
	Type    ErrorType
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

// StatusCode maps the error type to an HTTP status code.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case BadRequestError, InvalidCredentialsError, UploadError:
		// InvalidCredentials deliberately shares 400 with BadRequest so login
		// failures leak nothing through the status code either.
		return http.StatusBadRequest
	case UnauthorizedError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(errType ErrorType, message string, underlying error) *AppError {
	return &AppError{Type: errType, Message: message, Err: underlying}
}

func NewBadRequest(message string) *AppError {
	return New(BadRequestError, message, nil)
}

func NewConflict(message string) *AppError {
	return New(ConflictError, message, nil)
}

// NewInvalidCredentials always carries the same message regardless of cause.
func NewInvalidCredentials() *AppError {
	return New(InvalidCredentialsError, "Invalid credentials", nil)
}

func NewUnauthorized(message string) *AppError {
	return New(UnauthorizedError, message, nil)
}

func NewForbidden(message string) *AppError {
	return New(ForbiddenError, message, nil)
}

func NewNotFound(message string) *AppError {
	return New(NotFoundError, message, nil)
}

func NewUpload(message string) *AppError {
	return New(UploadError, message, nil)
}

func NewInternal(message string, underlying error) *AppError {
	return New(InternalError, message, underlying)
}
