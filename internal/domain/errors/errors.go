package errors

import (
	"errors"
	"fmt"
)

// Error types for the scoring console
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeSchema          ErrorType = "schema"
	ErrorTypeParsing         ErrorType = "parsing"
	ErrorTypeMissingResource ErrorType = "missing_resource"
	ErrorTypeModel           ErrorType = "model"
	ErrorTypeInternal        ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StatusCode int                    `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: 400,
	}
}

// NewSchemaError reports missing or mismatched columns.
func NewSchemaError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeSchema,
		Code:       code,
		Message:    message,
		StatusCode: 422,
	}
}

// NewParseError reports a malformed value; line is 1-based, 0 when unknown.
func NewParseError(field string, line int, message string) *AppError {
	details := map[string]interface{}{"field": field}
	if line > 0 {
		details["line"] = line
	}
	return &AppError{
		Type:       ErrorTypeParsing,
		Code:       "PARSE_ERROR",
		Message:    message,
		StatusCode: 400,
		Details:    details,
	}
}

func NewMissingResourceError(resource, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeMissingResource,
		Code:       "RESOURCE_MISSING",
		Message:    message,
		StatusCode: 404,
		Details:    map[string]interface{}{"resource": resource},
	}
}

func NewModelError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeModel,
		Code:       code,
		Message:    message,
		StatusCode: 500,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: 500,
	}
}

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
