package control

import (
	"context"
	"net/http"

	"github.com/skillsenselab/hostagent/errors"
	"github.com/skillsenselab/hostagent/plugin"
)

// Envelope is the uniform controller response. StatusCode doubles as the
// HTTP status the API layer renders it with.
type Envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Ok builds a success envelope.
func Ok(data any) Envelope {
	return Envelope{Success: true, StatusCode: http.StatusOK, Data: data}
}

// OkMessage builds a success envelope with an operator-facing message.
func OkMessage(data any, message string) Envelope {
	return Envelope{Success: true, StatusCode: http.StatusOK, Data: data, Message: message}
}

// Fail builds a failure envelope from an error, deriving the status code
// from the error taxonomy.
func Fail(err error) Envelope {
	env := Envelope{Success: false, StatusCode: errors.StatusOf(err), Error: err.Error()}
	if appErr, ok := errors.AsAppError(err); ok {
		env.Error = appErr.Message
	}
	return env
}

// FailStatus builds a failure envelope with an explicit status code.
func FailStatus(status int, message string) Envelope {
	return Envelope{Success: false, StatusCode: status, Error: message}
}

// Controller handles actions for one control domain.
type Controller interface {
	plugin.Capability

	// HandleAction processes a POST under /api/v1/{name}/. Path holds the
	// segments after the controller name; body is the decoded JSON body.
	HandleAction(ctx context.Context, path []string, body map[string]any) Envelope
}

// GetHandler marks a controller that also answers GET requests. A
// controller not implementing it rejects reads as not implemented.
type GetHandler interface {
	// HandleGet processes a GET under /api/v1/{name}/.
	HandleGet(ctx context.Context, path []string, query map[string]string) Envelope
}

// Factories collects controller factories registered by provider packages.
var Factories plugin.FactorySet[Controller]

// Register adds a controller factory.
func Register(f plugin.Factory[Controller]) {
	Factories.Register(f)
}
