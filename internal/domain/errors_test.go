package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with wrapped error",
			err:  &AppError{Code: CodeNetworkFailure, Message: "network failure", Err: errors.New("connection refused")},
			want: "network failure: connection refused",
		},
		{
			name: "without wrapped error",
			err:  &AppError{Code: CodeNotFound, Message: "slot not found"},
			want: "slot not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	appErr := NewNetworkFailure(inner)

	if !errors.Is(appErr, inner) {
		t.Error("Unwrap() should allow errors.Is to find wrapped error")
	}
	if (&AppError{Code: CodeInternal}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when Err is nil")
	}
}

func TestClassificationHelpers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checkFn func(error) bool
	}{
		{"not found", ErrNotFound, IsNotFound},
		{"already exists", ErrAlreadyExists, IsAlreadyExists},
		{"validation", NewValidationError(map[string]string{"email": "is required"}, nil), IsValidation},
		{"internal", ErrInternal, IsInternal},
		{"unauthorized", ErrUnauthorized, IsUnauthorized},
		{"server rejected", NewServerRejected(http.StatusConflict, "slot already booked"), IsServerRejected},
		{"network failure", NewNetworkFailure(errors.New("eof")), IsNetworkFailure},
		{"wrapped", fmt.Errorf("list slots: %w", ErrNotFound), IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.checkFn(tt.err) {
				t.Errorf("helper returned false for %v", tt.err)
			}
		})
	}

	if IsNotFound(errors.New("plain")) {
		t.Error("plain errors must not be classified")
	}
	if IsUnauthorized(nil) {
		t.Error("nil must not be classified")
	}
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"conflict", ErrAlreadyExists, http.StatusConflict},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"server rejected keeps upstream status", NewServerRejected(http.StatusUnprocessableEntity, ""), http.StatusUnprocessableEntity},
		{"server rejected without status", NewServerRejected(0, "x"), http.StatusBadGateway},
		{"network", NewNetworkFailure(nil), http.StatusBadGateway},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	const fallback = "Failed to create vehicle"

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message passes through", NewServerRejected(http.StatusBadRequest, "Plate number already registered"), "Plate number already registered"},
		{"server without message falls back", NewServerRejected(http.StatusBadRequest, ""), fallback},
		{"network hides details", NewNetworkFailure(errors.New("dial tcp 10.0.0.1:443")), fallback},
		{"internal hides details", NewAppError(CodeInternal, "nil pointer", nil), fallback},
		{"not found", NewAppError(CodeNotFound, "vehicle not found", nil), "vehicle not found"},
		{"plain error", errors.New("boom"), fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err, fallback); got != tt.want {
				t.Errorf("UserMessage() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestFieldErrors(t *testing.T) {
	fields := map[string]string{"vehicleYear": "must be between 1900 and 2027"}
	err := fmt.Errorf("create: %w", NewValidationError(fields, nil))

	got := FieldErrors(err)
	if got["vehicleYear"] != fields["vehicleYear"] {
		t.Errorf("FieldErrors() = %v; want %v", got, fields)
	}
	if FieldErrors(errors.New("x")) != nil {
		t.Error("FieldErrors() should be nil for non-AppError")
	}
}
