package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	domainErrors "github.com/davidleathers/cnp-fraud-console/internal/domain/errors"
)

// ErrorHandler maps errors to HTTP responses
type ErrorHandler interface {
	HandleError(err error) (status int, code, message string, details map[string]interface{})
}

// DefaultErrorHandler implements ErrorHandler for the domain error taxonomy
type DefaultErrorHandler struct {
	debugMode bool
}

// NewErrorHandler creates a new error handler; debug mode exposes the
// underlying error text of internal failures.
func NewErrorHandler(debugMode bool) ErrorHandler {
	return &DefaultErrorHandler{debugMode: debugMode}
}

// HandleError converts various error types to HTTP responses
func (h *DefaultErrorHandler) HandleError(err error) (status int, code, message string, details map[string]interface{}) {
	if err == nil {
		return http.StatusOK, "", "", nil
	}

	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		return h.handleDomainError(appErr)
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Message,
			map[string]interface{}{"fields": validationErr.Fields}
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
			fmt.Sprintf("Request body exceeds %d bytes", maxBytesErr.Limit), nil
	}

	if errors.Is(err, context.Canceled) {
		return http.StatusRequestTimeout, "REQUEST_CANCELED", "Request was canceled", nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout, "REQUEST_TIMEOUT", "Request timed out", nil
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return http.StatusBadRequest, "INVALID_JSON", "Invalid JSON syntax",
			map[string]interface{}{"offset": syntaxErr.Offset}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return http.StatusBadRequest, "TYPE_MISMATCH",
			fmt.Sprintf("Invalid type for field '%s'", typeErr.Field),
			map[string]interface{}{"expected": typeErr.Type.String(), "got": typeErr.Value}
	}

	if h.debugMode {
		details = map[string]interface{}{"error": err.Error()}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", details
}

func (h *DefaultErrorHandler) handleDomainError(err *domainErrors.AppError) (int, string, string, map[string]interface{}) {
	status := err.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	message := err.Message
	details := err.Details
	switch err.Type {
	case domainErrors.ErrorTypeModel, domainErrors.ErrorTypeInternal:
		if h.debugMode && err.Cause != nil {
			details = withDetail(details, "cause", err.Cause.Error())
		}
	default:
		if err.Cause != nil {
			message = fmt.Sprintf("%s: %v", err.Message, err.Cause)
		}
	}
	return status, err.Code, message, details
}

func withDetail(details map[string]interface{}, key string, value interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out[key] = value
	return out
}
