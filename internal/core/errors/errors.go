package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Authentication & Authorization
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")

	// Datasets
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	ErrSchemaMismatch     = errors.New("dataset does not match the column schema")
	ErrUnsupportedFormat  = errors.New("unsupported spreadsheet format")
	ErrMalformedRow       = errors.New("malformed dataset row")
	ErrIndicatorNotFound  = errors.New("indicator not found")
	ErrUploadRequired     = errors.New("a spreadsheet file is required")
	ErrUploadTooLarge     = errors.New("uploaded file is too large")

	// Query validation
	ErrUnknownFilterField = errors.New("unknown filter field")
	ErrInvalidThreshold   = errors.New("threshold must be a non-negative number of hours")
	ErrInvalidMeanScope   = errors.New("invalid mean scope")

	// Generic
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Message:    message,
		Code:       "UNAUTHORIZED",
		StatusCode: 401,
	}
}

func NewPayloadTooLargeError(message string) *AppError {
	return &AppError{
		Err:        ErrUploadTooLarge,
		Message:    message,
		Code:       "PAYLOAD_TOO_LARGE",
		StatusCode: 413,
	}
}

func NewRateLimitError() *AppError {
	return &AppError{
		Err:        ErrRateLimited,
		Message:    "Too many requests. Please try again later.",
		Code:       "RATE_LIMITED",
		StatusCode: 429,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "An unexpected error occurred",
		Code:       "INTERNAL_ERROR",
		StatusCode: 500,
	}
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
