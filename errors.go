package agentlens

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig is returned when the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// =========================================================================
	// API response errors, mapped from HTTP status codes
	// =========================================================================

	// ErrNotFound is returned when the requested resource does not exist (404)
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is returned when the request lacks valid credentials (401)
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the credentials lack permission (403)
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when the request conflicts with existing state (409)
	ErrConflict = errors.New("conflict")

	// ErrValidation is returned when the server rejects the request body (400, 422)
	ErrValidation = errors.New("validation failed")

	// ErrServer is returned for server-side failures (5xx)
	ErrServer = errors.New("server error")

	// ErrRequestFailed is returned for any other non-success status
	ErrRequestFailed = errors.New("request failed")
)

// APIError represents a failed API call with additional context.
type APIError struct {
	Op         string         // Operation that failed, e.g. "list agents"
	StatusCode int            // HTTP status code of the response
	Code       string         // Machine-readable error code from the envelope
	Message    string         // Human-readable message from the envelope
	Err        error          // Underlying sentinel or transport error
	Context    map[string]any // Additional context
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (status=%d, code=%s): %s", e.Op, e.StatusCode, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s (status=%d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *APIError) Unwrap() error {
	return e.Err
}

// WithContext adds additional context to the error
func (e *APIError) WithContext(key string, value any) *APIError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewAPIError creates a new APIError for a failed response, mapping the
// status code to one of the sentinel errors above.
func NewAPIError(op string, statusCode int, code, message string) *APIError {
	return &APIError{
		Op:         op,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Err:        statusError(statusCode),
	}
}

// statusError maps an HTTP status code to a sentinel error.
func statusError(statusCode int) error {
	switch {
	case statusCode == 404:
		return ErrNotFound
	case statusCode == 401:
		return ErrUnauthorized
	case statusCode == 403:
		return ErrForbidden
	case statusCode == 409:
		return ErrConflict
	case statusCode == 400 || statusCode == 422:
		return ErrValidation
	case statusCode >= 500:
		return ErrServer
	default:
		return ErrRequestFailed
	}
}
