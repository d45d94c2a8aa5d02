package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Error codes for the submission pipeline. Validation, storage and
// persistence failures abort a submission; extraction and notification
// failures degrade and are only logged.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeStorage     = "STORAGE_ERROR"
	CodePersistence = "PERSISTENCE_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Cause: ErrValidation}
}

func NewStorageError(message string, cause error) *AppError {
	return &AppError{Code: CodeStorage, Message: message, Cause: cause}
}

func NewPersistenceError(message string, cause error) *AppError {
	return &AppError{Code: CodePersistence, Message: message, Cause: cause}
}

// IsValidation reports whether err is a user-correctable validation failure.
func IsValidation(err error) bool {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code == CodeValidation
	}
	return false
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
