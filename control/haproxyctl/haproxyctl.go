// Package haproxyctl exposes HAProxy backend and server control under
// /api/v1/haproxy/.
//
// Paths may name an instance explicitly ("edge/backends/...") or omit it
// ("backends/...") to address the default instance.
package haproxyctl

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/skillsenselab/hostagent/control"
	"github.com/skillsenselab/hostagent/haproxy"
	"github.com/skillsenselab/hostagent/logger"
	"github.com/skillsenselab/hostagent/plugin"
	"github.com/skillsenselab/hostagent/validation"
)

// Controller dispatches haproxy reads and actions onto instance clients.
type Controller struct {
	registry *haproxy.Registry
	log      *logger.Logger
}

// Factory returns a controller factory bound to the instance registry.
func Factory(registry *haproxy.Registry) plugin.Factory[control.Controller] {
	return func() (control.Controller, error) {
		return New(registry), nil
	}
}

// New builds the controller.
func New(registry *haproxy.Registry) *Controller {
	return &Controller{
		registry: registry,
		log:      logger.WithComponent("control.haproxy"),
	}
}

// Name implements plugin.Capability.
func (c *Controller) Name() string { return "haproxy" }

// HandleGet serves:
//
//	GET [{instance}/]backends
//	GET [{instance}/]backends/{backend}/servers
func (c *Controller) HandleGet(_ context.Context, path []string, _ map[string]string) control.Envelope {
	if len(path) == 0 {
		return control.FailStatus(http.StatusBadRequest, "path is required")
	}

	instance, rest := splitInstance(path)
	client, err := c.registry.Resolve(instance)
	if err != nil {
		return control.Fail(err)
	}

	switch {
	case len(rest) == 1 && rest[0] == "backends":
		backends, err := client.Backends()
		if err != nil {
			return control.Fail(err)
		}
		return control.Ok(map[string]any{
			"instance": client.Name(),
			"backends": backends,
			"count":    len(backends),
		})

	case len(rest) == 3 && rest[0] == "backends" && rest[2] == "servers":
		backend := rest[1]
		servers, err := client.Servers(backend)
		if err != nil {
			return control.Fail(err)
		}
		return control.Ok(map[string]any{
			"instance": client.Name(),
			"backend":  backend,
			"servers":  servers,
			"count":    len(servers),
		})

	default:
		return control.FailStatus(http.StatusNotFound,
			fmt.Sprintf("unknown path: %s", strings.Join(path, "/")))
	}
}

type stateChangeRequest struct {
	Action string `json:"action" validate:"required,oneof=ready drain maint"`
}

// HandleAction serves:
//
//	POST [{instance}/]backends/{backend}/servers/{server}/action
//	     {"action": "ready"|"drain"|"maint"}
func (c *Controller) HandleAction(_ context.Context, path []string, body map[string]any) control.Envelope {
	var req stateChangeRequest
	req.Action, _ = body["action"].(string)
	if err := validation.Struct(req); err != nil {
		return control.Fail(err)
	}
	state := haproxy.ServerState(req.Action)

	instance, rest := splitInstance(path)
	if len(rest) != 5 || rest[0] != "backends" || rest[2] != "servers" || rest[4] != "action" {
		return control.FailStatus(http.StatusBadRequest,
			"expected path: [{instance}/]backends/{backend}/servers/{server}/action")
	}
	backend, server := rest[1], rest[3]

	client, err := c.registry.Resolve(instance)
	if err != nil {
		return control.Fail(err)
	}

	c.log.Info("state change requested", logger.Fields(
		logger.FieldInstance, client.Name(),
		"backend", backend,
		"server", server,
		"state", req.Action,
	))

	if err := client.SetServerState(backend, server, state); err != nil {
		return control.Fail(err)
	}

	return control.OkMessage(map[string]any{
		"instance": client.Name(),
		"backend":  backend,
		"server":   server,
		"action":   req.Action,
		"status":   "completed",
	}, fmt.Sprintf("server state changed to %q", req.Action))
}

// splitInstance peels an instance name off the front of the path. A path
// starting with "backends" addresses the default instance.
func splitInstance(path []string) (instance string, rest []string) {
	if len(path) > 0 && path[0] != "backends" {
		return path[0], path[1:]
	}
	return "", path
}
