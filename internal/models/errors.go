package models

import (
	"fmt"
	"strings"
)

// Error codes carried by AppError.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeDuplicateField = "DUPLICATE_FIELD"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInternal       = "INTERNAL_ERROR"
)

// AppError represents a domain error that is safe to show to a client.
type AppError struct {
	Code    string
	Message string
	Field   string // set for DUPLICATE_FIELD
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

// Is matches any AppError with the same code, so callers can test against
// the sentinels below with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Field == "" || t.Field == e.Field)
}

var (
	ErrValidation     = &AppError{Code: CodeValidation, Message: "validation failed"}
	ErrDuplicateField = &AppError{Code: CodeDuplicateField, Message: "duplicate field"}
	ErrNotFound       = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized   = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}

	// ErrBadCredentials is deliberately the same for an unknown username and
	// a wrong password.
	ErrBadCredentials = &AppError{Code: CodeUnauthorized, Message: "User not found or wrong password"}
)

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewDuplicateFieldError(field string) *AppError {
	return &AppError{
		Code:    CodeDuplicateField,
		Field:   field,
		Message: fmt.Sprintf("%s%s already taken", strings.ToUpper(field[:1]), field[1:]),
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}
