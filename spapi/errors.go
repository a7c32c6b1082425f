package spapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrMissingCredentials indicates the public or secret key is empty
	ErrMissingCredentials = errors.New("public and secret API keys are required")
	// ErrNotLoggedIn indicates the automatic login before a call failed
	ErrNotLoggedIn = errors.New("the user must be logged")
	// ErrUnsupportedParameter indicates a parameter outside the call's allow-list
	ErrUnsupportedParameter = errors.New("unsupported parameter")
	// ErrUploadFailed indicates the file upload returned no file code
	ErrUploadFailed = errors.New("failure on file upload")
	// ErrInvalidResponse indicates a body that is not the expected JSON document
	ErrInvalidResponse = errors.New("invalid response")
)

// APIError is the single error kind returned by the client
type APIError struct {
	// Op is the client operation, e.g. "add_media"
	Op string
	// StatusCode is the HTTP status when the failure comes from the response status
	StatusCode int
	Message    string
	// Body keeps the raw response for troubleshooting
	Body string
	Err  error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("APIError: %s", e.Message)
	}
	return fmt.Sprintf("%s: APIError: %s", e.Op, e.Message)
}

// Unwrap exposes the cause for errors.Is and errors.As
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

func newError(op string, cause error, format string, args ...any) *APIError {
	return &APIError{Op: op, Message: fmt.Sprintf(format, args...), Err: cause}
}

func statusError(op string, status int, body []byte) *APIError {
	return &APIError{
		Op:         op,
		StatusCode: status,
		Message:    fmt.Sprintf("invalid status code response: %d", status),
		Body:       string(body),
	}
}

// wrapCallError turns any failure into an *APIError, keeping existing ones as is
func wrapCallError(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return newError(op, err, "error in the call for %s: %v", op, err)
}
