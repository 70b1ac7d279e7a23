package recognize

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoAPIKey is returned when the API key is missing.
	ErrNoAPIKey = errors.New("recognize: API key required")

	// ErrNoBaseURL is returned when the remote endpoint is missing.
	ErrNoBaseURL = errors.New("recognize: base URL required")

	// ErrEngineClosed is returned when using a closed engine.
	ErrEngineClosed = errors.New("recognize: engine closed")
)

// APIError represents an error response from a remote recognition API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Engine identifies which engine returned the error.
	Engine string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("recognize [%s]: API error %d: %s", e.Engine, e.StatusCode, e.Message)
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// EngineError wraps an error with engine context.
type EngineError struct {
	Engine string
	Err    error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("recognize [%s]: %v", e.Engine, e.Err)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with engine context.
func WrapError(engine string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Engine: engine, Err: err}
}
