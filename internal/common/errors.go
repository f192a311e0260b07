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

// Pipeline failure taxonomy. Extraction and decode failures are scoped to one
// document and never abort a batch; store failures surface to the caller.
var (
	ErrExtractionFailure = errors.New("text extraction failed")
	ErrDecode            = errors.New("structured output could not be decoded")
	ErrStore             = errors.New("catalogue store error")
	ErrExternalService   = errors.New("external service error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsDocumentScoped reports whether err only degrades a single document.
func IsDocumentScoped(err error) bool {
	return errors.Is(err, ErrExtractionFailure) || errors.Is(err, ErrDecode) || errors.Is(err, ErrExternalService)
}
