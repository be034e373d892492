package errors

import (
	"fmt"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeDomainState   ErrorCode = "DOMAIN_STATE"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation creates a validation error (malformed or out-of-range input)
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// DomainState creates a domain-state error (business rule violated given current state)
func DomainState(message string) *AppError {
	return New(ErrCodeDomainState, message)
}

// NotFound creates a not-found error
func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

// Forbidden creates a forbidden error
func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

// Internal wraps a store or unexpected failure; callers only ever see the
// message, the wrapped detail is for server-side logs
func Internal(message string, err error) *AppError {
	return Wrap(ErrCodeInternalError, message, err)
}

// CodeOf returns the error code of err, or INTERNAL_ERROR for foreign errors
func CodeOf(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// IsNotFound checks if error is NotFound
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsValidation checks if error is a validation error
func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

// IsDomainState checks if error is a domain-state error
func IsDomainState(err error) bool {
	return CodeOf(err) == ErrCodeDomainState
}

// IsUnauthorized checks if error is Unauthorized
func IsUnauthorized(err error) bool {
	return CodeOf(err) == ErrCodeUnauthorized
}

// IsForbidden checks if error is Forbidden
func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}
