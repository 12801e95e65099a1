package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"parse", Parse("bad address"), ErrCodeParse, http.StatusBadRequest},
		{"validation", Validation("unknown state"), ErrCodeValidation, http.StatusBadRequest},
		{"connection", Connection("/run/lb.sock", nil), ErrCodeConnection, http.StatusServiceUnavailable},
		{"timeout", Timeout("show stat", nil), ErrCodeTimeout, http.StatusServiceUnavailable},
		{"command", Command("Invalid server."), ErrCodeCommand, http.StatusBadGateway},
		{"not_found", NotFound("backend", "web"), ErrCodeNotFound, http.StatusNotFound},
		{"not_implemented", NotImplemented("eureka", "GET"), ErrCodeNotImplemented, http.StatusMethodNotAllowed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("code = %s, want %s", tc.err.Code, tc.code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("status = %d, want %d", tc.err.HTTPStatus, tc.status)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Connection("127.0.0.1:9999", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if got := err.Error(); got != fmt.Sprintf("CONNECTION_FAILED: unable to connect to 127.0.0.1:9999 (cause: %v)", cause) {
		t.Errorf("unexpected Error(): %s", got)
	}
}

func TestAsAppErrorThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", NotFound("instance", "edge"))

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed on a wrapped error")
	}
	if appErr.Code != ErrCodeNotFound {
		t.Errorf("code = %s, want %s", appErr.Code, ErrCodeNotFound)
	}
	if !HasCode(wrapped, ErrCodeNotFound) {
		t.Error("HasCode should see through wrapping")
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(Command("error")); got != http.StatusBadGateway {
		t.Errorf("StatusOf(Command) = %d, want 502", got)
	}
	if got := StatusOf(stderrors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("StatusOf(plain) = %d, want 500", got)
	}
}
