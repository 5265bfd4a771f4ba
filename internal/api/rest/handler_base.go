package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
)

// ResponseEnvelope wraps all API responses
type ResponseEnvelope struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
	Meta    ResponseMeta   `json:"meta"`
}

// ResponseMeta contains response metadata
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// ErrorResponse provides detailed error information
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Fields  map[string][]string    `json:"fields,omitempty"`
	TraceID string                 `json:"trace_id,omitempty"`
}

// ValidationError represents a request validation failure
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	validator    *validator.Validate
	errorHandler ErrorHandler
	apiVersion   string
	logger       *slog.Logger
}

// NewBaseHandler creates a base handler with the request validators registered
func NewBaseHandler(apiVersion string, debugMode bool, logger *slog.Logger) *BaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseHandler{
		validator:    newValidator(),
		errorHandler: NewErrorHandler(debugMode),
		apiVersion:   apiVersion,
		logger:       logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Money fields validate numerically so min/max tags apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("province", validateProvince)
	_ = v.RegisterValidation("cardtype", validateCardType)
	_ = v.RegisterValidation("txntype", validateTransactionType)
	return v
}

// Validate runs struct validation and converts failures to a ValidationError
func (h *BaseHandler) Validate(v interface{}) error {
	if err := h.validator.Struct(v); err != nil {
		return h.formatValidationError(err)
	}
	return nil
}

// decodeJSON reads a JSON body of at most maxBytes into v and validates it
func (h *BaseHandler) decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return &ValidationError{Message: "Request body is empty"}
		case errors.Is(err, io.ErrUnexpectedEOF):
			return &ValidationError{Message: "Request body is truncated JSON"}
		case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.As(err, &maxBytesErr):
			return err
		default:
			return &ValidationError{Message: "Invalid request body: " + err.Error()}
		}
	}
	return h.Validate(v)
}

// formatValidationError converts validator errors to our format
func (h *BaseHandler) formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &ValidationError{Message: "Validation error: " + err.Error()}
	}

	fields := make(map[string][]string)
	for _, fe := range validationErrors {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "This field is required"
		case "min":
			msg = fmt.Sprintf("Minimum value is %s", fe.Param())
		case "max":
			msg = fmt.Sprintf("Maximum value is %s", fe.Param())
		case "oneof":
			msg = fmt.Sprintf("Must be one of: %s", fe.Param())
		case "province":
			msg = "Must be one of: " + strings.Join(transaction.Provinces, ", ")
		case "cardtype":
			msg = "Must be one of: " + joinCardTypes()
		case "txntype":
			msg = "Must be one of: " + joinTypes()
		default:
			msg = fmt.Sprintf("Failed %s validation", fe.Tag())
		}
		fields[fe.Field()] = append(fields[fe.Field()], msg)
	}
	return &ValidationError{Message: "Validation failed", Fields: fields}
}

// writeSuccess writes a successful response
func (h *BaseHandler) writeSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	h.writeJSON(w, r, status, ResponseEnvelope{
		Success: true,
		Data:    data,
		Meta:    h.meta(r),
	})
}

// writeError writes an error response
func (h *BaseHandler) writeError(w http.ResponseWriter, r *http.Request, status int, errResp *ErrorResponse) {
	if span := trace.SpanFromContext(r.Context()); span.SpanContext().HasTraceID() {
		errResp.TraceID = span.SpanContext().TraceID().String()
	}
	h.writeJSON(w, r, status, ResponseEnvelope{
		Success: false,
		Error:   errResp,
		Meta:    h.meta(r),
	})
}

// writeJSON writes JSON response with proper headers
func (h *BaseHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WarnContext(r.Context(), "failed to encode response", "error", err)
	}
}

// handleError converts domain errors to HTTP responses
func (h *BaseHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := h.errorHandler.HandleError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "code", code, "error", err)
	}

	resp := &ErrorResponse{Code: code, Message: message, Details: details}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		resp.Fields = validationErr.Fields
		resp.Details = nil
	}
	h.writeError(w, r, status, resp)
}

func (h *BaseHandler) meta(r *http.Request) ResponseMeta {
	return ResponseMeta{
		RequestID: requestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
		Version:   h.apiVersion,
	}
}

func validateProvince(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, p := range transaction.Provinces {
		if s == p {
			return true
		}
	}
	return false
}

func validateCardType(fl validator.FieldLevel) bool {
	_, err := transaction.ParseCardType(fl.Field().String())
	return err == nil
}

func validateTransactionType(fl validator.FieldLevel) bool {
	_, err := transaction.ParseType(fl.Field().String())
	return err == nil
}

func joinCardTypes() string {
	var names []string
	for _, c := range transaction.CardTypes() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func joinTypes() string {
	var names []string
	for _, t := range transaction.Types() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
