package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation is returned when caller input is rejected.
	ErrValidation = errors.New("validation failed")
	// ErrConfiguration is returned when the processor integration is unusable.
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstream is returned when the payment processor fails or answers with malformed data.
	ErrUpstream = errors.New("upstream error")
	// ErrStore is returned when the record store fails.
	ErrStore = errors.New("store error")
	// ErrNotFound is returned when a referenced link does not exist.
	ErrNotFound = errors.New("not found")
)

// Error carries one error kind plus the message and optional cause and field details.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Validation builds an ErrValidation error. fields may be nil.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

// Configuration builds an ErrConfiguration error.
func Configuration(message string) *Error {
	return &Error{Kind: ErrConfiguration, Message: message}
}

// Upstream builds an ErrUpstream error wrapping cause.
func Upstream(message string, cause error) *Error {
	return &Error{Kind: ErrUpstream, Message: message, Err: cause}
}

// Store builds an ErrStore error wrapping cause.
func Store(message string, cause error) *Error {
	return &Error{Kind: ErrStore, Message: message, Err: cause}
}

// NotFound builds an ErrNotFound error for the given link id.
func NotFound(id string) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("payment link %s not found", id)}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    map[string]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	message := err.Error()
	var details map[string]string
	var appErr *Error
	if errors.As(err, &appErr) {
		message = appErr.Message
		details = appErr.Fields
	}

	var httpErr *HTTPError
	switch {
	case errors.Is(err, ErrValidation):
		httpErr = NewHTTPError(http.StatusBadRequest, message, "VALIDATION_ERROR")
	case errors.Is(err, ErrNotFound):
		httpErr = NewHTTPError(http.StatusNotFound, message, "NOT_FOUND")
	case errors.Is(err, ErrConfiguration):
		httpErr = NewHTTPError(http.StatusInternalServerError, message, "CONFIGURATION_ERROR")
	case errors.Is(err, ErrUpstream):
		httpErr = NewHTTPError(http.StatusBadGateway, message, "UPSTREAM_ERROR")
	case errors.Is(err, ErrStore):
		httpErr = NewHTTPError(http.StatusInternalServerError, "record store unavailable", "STORE_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
	httpErr.Details = details
	return httpErr
}
