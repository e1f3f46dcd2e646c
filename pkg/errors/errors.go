package apperrors

import (
	"errors"
	"net/http"
)

// Common errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("conflict")
	ErrAlreadyExists      = errors.New("already exists")
	ErrTooLarge           = errors.New("file too large")
	ErrNotUploaded        = errors.New("file not uploaded")
	ErrTokenIssuance      = errors.New("token issuance failed")
	ErrInternal           = errors.New("internal error")
)

// APIError is an error with a message that is safe to show to clients.
type APIError struct {
	Status  int
	Message string
	Errors  []string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Validation reports missing or malformed input (400).
func Validation(message string, fields ...string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message, Errors: fields, Err: ErrInvalidInput}
}

// Conflict reports a duplicate identity (409).
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Message: message, Err: ErrAlreadyExists}
}

// NotFound reports an unknown account. It renders as 400 so callers cannot tell
// a missing account from a bad request.
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message, Err: ErrNotFound}
}

// InvalidCredentials reports a password mismatch (400).
func InvalidCredentials(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message, Err: ErrInvalidCredentials}
}

// Internal wraps cause with a generic message (500).
func Internal(message string, cause error) *APIError {
	if cause == nil {
		cause = ErrInternal
	}
	return &APIError{Status: http.StatusInternalServerError, Message: message, Err: cause}
}

// Unauthorized reports a missing or invalid access credential (401).
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: message, Err: ErrUnauthorized}
}

// HTTPStatus maps err to the status code used in the response envelope.
func HTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}

	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrNotUploaded):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client facing message for err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	switch HTTPStatus(err) {
	case http.StatusInternalServerError:
		return "Internal server error"
	default:
		return err.Error()
	}
}

// Details returns per-field details attached to err, if any.
func Details(err error) []string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Errors
	}
	return nil
}
