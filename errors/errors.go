package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the HTTP status code this error maps to.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// --- Common Error Constructors ---

// Parse creates an AppError for input that could not be parsed.
func Parse(message string) *AppError {
	return &AppError{
		Code: ErrCodeParse, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Validation creates an AppError for semantically invalid input.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeValidation, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Connection creates an AppError for an unreachable endpoint. The API layer
// renders it as 503 so operators can tell "down" apart from "rejected".
func Connection(target string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConnection, Message: fmt.Sprintf("unable to connect to %s", target),
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"target": target},
		Cause:      cause,
	}
}

// Timeout creates an AppError for an exchange that exceeded its deadline.
func Timeout(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s timed out", operation),
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"operation": operation},
		Cause:      cause,
	}
}

// Command creates an AppError for a command the remote side rejected in-band.
func Command(response string) *AppError {
	return &AppError{
		Code: ErrCodeCommand, Message: fmt.Sprintf("remote rejected command: %s", response),
		HTTPStatus: http.StatusBadGateway,
	}
}

// NotFound creates an AppError for a missing resource.
func NotFound(resource, name string) *AppError {
	details := map[string]any{"resource": resource}
	if name != "" {
		details["name"] = name
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %q not found", resource, name),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// NotImplemented creates an AppError for an optional capability a plugin
// does not provide.
func NotImplemented(plugin, capability string) *AppError {
	return &AppError{
		Code: ErrCodeNotImplemented, Message: fmt.Sprintf("plugin %q does not support %s", plugin, capability),
		HTTPStatus: http.StatusMethodNotAllowed,
		Details:    map[string]any{"plugin": plugin, "capability": capability},
	}
}

// DuplicatePlugin creates an AppError for a plugin name collision. It is
// never fatal; callers log it and keep the first registration.
func DuplicatePlugin(name string) *AppError {
	return &AppError{
		Code: ErrCodeDuplicatePlugin, Message: fmt.Sprintf("plugin %q already registered", name),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"name": name},
	}
}

// Internal creates an AppError wrapping an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}
