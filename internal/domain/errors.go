package domain

import (
	"errors"
	"net/http"
)

// Error codes used across the client, cache and page layers.
const (
	CodeNotFound       = 1
	CodeAlreadyExists  = 2
	CodeValidation     = 3
	CodeInternal       = 4
	CodeUnauthorized   = 5
	CodeServerRejected = 6
	CodeNetworkFailure = 7
)

// AppError represents a classified error with a code, message, and optional wrapped error.
//
// Status carries the upstream HTTP status for errors that originate from the
// remote API (zero otherwise). Fields carries per-field messages for
// validation failures, keyed by form field name.
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"-"`
	Fields  map[string]string `json:"errors,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined errors.
//
// Use the IsX helpers rather than errors.Is to classify an error. The helpers
// compare codes via errors.As, so they also match freshly constructed and
// wrapped instances.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized  = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
)

// NewAppError creates a new AppError with the given code, message, and wrapped error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError returns a CodeValidation error carrying per-field messages.
func NewValidationError(fields map[string]string, err error) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "validation error",
		Fields:  fields,
		Err:     err,
	}
}

// NewServerRejected returns a CodeServerRejected error for a non-2xx upstream
// response. message is the server-supplied text and may be empty.
func NewServerRejected(status int, message string) *AppError {
	return &AppError{
		Code:    CodeServerRejected,
		Message: message,
		Status:  status,
	}
}

// NewNetworkFailure wraps a transport-level failure.
func NewNetworkFailure(err error) *AppError {
	return &AppError{
		Code:    CodeNetworkFailure,
		Message: "network failure",
		Err:     err,
	}
}

// IsNotFound reports whether err is or wraps an AppError with CodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsAlreadyExists reports whether err is or wraps an AppError with CodeAlreadyExists.
func IsAlreadyExists(err error) bool {
	return hasCode(err, CodeAlreadyExists)
}

// IsValidation reports whether err is or wraps an AppError with CodeValidation.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsInternal reports whether err is or wraps an AppError with CodeInternal.
func IsInternal(err error) bool {
	return hasCode(err, CodeInternal)
}

// IsUnauthorized reports whether err is or wraps an AppError with CodeUnauthorized.
func IsUnauthorized(err error) bool {
	return hasCode(err, CodeUnauthorized)
}

// IsServerRejected reports whether err is or wraps an AppError with CodeServerRejected.
func IsServerRejected(err error) bool {
	return hasCode(err, CodeServerRejected)
}

// IsNetworkFailure reports whether err is or wraps an AppError with CodeNetworkFailure.
func IsNetworkFailure(err error) bool {
	return hasCode(err, CodeNetworkFailure)
}

// FieldErrors returns the per-field messages carried by a validation error, or nil.
func FieldErrors(err error) map[string]string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

// UserMessage extracts a message that is safe to show to end users.
//
// Server-supplied text (ServerRejected), not-found and validation messages are
// returned as-is. Internal, network and unknown errors always yield fallback
// so technical details never reach the page.
func UserMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		switch appErr.Code {
		case CodeNotFound, CodeAlreadyExists, CodeValidation, CodeServerRejected:
			return appErr.Message
		}
	}
	return fallback
}

func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code.
// If the error is an *AppError, the code is mapped; otherwise http.StatusInternalServerError is returned.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeAlreadyExists:
			return http.StatusConflict
		case CodeValidation:
			return http.StatusBadRequest
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeServerRejected:
			if appErr.Status >= 400 && appErr.Status < 600 {
				return appErr.Status
			}
			return http.StatusBadGateway
		case CodeNetworkFailure:
			return http.StatusBadGateway
		case CodeInternal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
