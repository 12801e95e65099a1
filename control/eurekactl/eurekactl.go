// Package eurekactl exposes Eureka registry reads and Spring actuator
// commands under /api/v1/eureka/.
package eurekactl

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/skillsenselab/hostagent/control"
	"github.com/skillsenselab/hostagent/eureka"
	"github.com/skillsenselab/hostagent/logger"
	"github.com/skillsenselab/hostagent/plugin"
	"github.com/skillsenselab/hostagent/validation"
)

type logLevelRequest struct {
	Logger string `json:"logger"`
	Level  string `json:"level" validate:"required"`
}

// Controller serves eureka registry queries and actuator actions.
type Controller struct {
	client *eureka.Client
	log    *logger.Logger
}

// Factory returns a controller factory bound to the given configuration.
// Construction fails when eureka is disabled; the plugin loader logs it
// and the controller is simply absent from the API.
func Factory(cfg eureka.Config) plugin.Factory[control.Controller] {
	return func() (control.Controller, error) {
		if !cfg.Enabled {
			return nil, fmt.Errorf("eureka: controller disabled in configuration")
		}
		client, err := eureka.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return New(client), nil
	}
}

// New builds the controller around an existing client.
func New(client *eureka.Client) *Controller {
	return &Controller{
		client: client,
		log:    logger.WithComponent("control.eureka"),
	}
}

// Name implements plugin.Capability.
func (c *Controller) Name() string { return "eureka" }

// HandleGet serves:
//
//	GET apps
//	GET apps/{instanceID}
//	GET apps/{instanceID}/health
func (c *Controller) HandleGet(ctx context.Context, path []string, _ map[string]string) control.Envelope {
	switch {
	case len(path) == 0 || (len(path) == 1 && path[0] == "apps"):
		instances, err := c.client.Applications(ctx)
		if err != nil {
			return control.Fail(err)
		}
		return control.Ok(map[string]any{
			"total":        len(instances),
			"applications": instances,
		})

	case len(path) == 2 && path[0] == "apps":
		inst, err := c.client.FindInstance(ctx, path[1])
		if err != nil {
			return control.Fail(err)
		}
		return control.Ok(inst)

	case len(path) == 3 && path[0] == "apps" && path[2] == "health":
		inst, err := c.client.FindInstance(ctx, path[1])
		if err != nil {
			return control.Fail(err)
		}
		health, err := c.client.Health(ctx, inst)
		if err != nil {
			return control.Fail(err)
		}
		return control.Ok(map[string]any{
			"instance_id": inst.InstanceID,
			"app_name":    inst.AppName,
			"health":      health,
		})

	default:
		return control.FailStatus(http.StatusNotFound,
			fmt.Sprintf("unknown path: %s", strings.Join(path, "/")))
	}
}

// HandleAction serves:
//
//	POST apps/{instanceID}/pause
//	POST apps/{instanceID}/shutdown
//	POST apps/{instanceID}/loglevel  {"logger": "...", "level": "..."}
func (c *Controller) HandleAction(ctx context.Context, path []string, body map[string]any) control.Envelope {
	if len(path) != 3 || path[0] != "apps" {
		return control.FailStatus(http.StatusNotFound,
			fmt.Sprintf("unknown path: %s", strings.Join(path, "/")))
	}
	instanceID, action := path[1], path[2]

	inst, err := c.client.FindInstance(ctx, instanceID)
	if err != nil {
		return control.Fail(err)
	}

	switch action {
	case "pause":
		result, err := c.client.Pause(ctx, inst)
		if err != nil {
			return control.Fail(err)
		}
		return c.actionOk(inst, "pause", result)

	case "shutdown":
		result, err := c.client.Shutdown(ctx, inst)
		if err != nil {
			return control.Fail(err)
		}
		return c.actionOk(inst, "shutdown", result)

	case "loglevel":
		var req logLevelRequest
		req.Logger, _ = body["logger"].(string)
		req.Level, _ = body["level"].(string)
		if err := validation.Struct(req); err != nil {
			return control.Fail(err)
		}
		if err := c.client.SetLogLevel(ctx, inst, req.Logger, req.Level); err != nil {
			return control.Fail(err)
		}
		return control.OkMessage(map[string]any{
			"instance_id": inst.InstanceID,
			"app_name":    inst.AppName,
			"logger":      req.Logger,
			"level":       strings.ToUpper(req.Level),
		}, "log level changed")

	default:
		return control.FailStatus(http.StatusNotFound,
			fmt.Sprintf("unknown action: %s", action))
	}
}

func (c *Controller) actionOk(inst *eureka.Instance, action string, details map[string]any) control.Envelope {
	c.log.Info("actuator action completed", logger.Fields(
		logger.FieldInstance, inst.InstanceID,
		logger.FieldOperation, action,
	))
	return control.OkMessage(map[string]any{
		"instance_id": inst.InstanceID,
		"app_name":    inst.AppName,
		"details":     details,
	}, fmt.Sprintf("%s sent to %s", action, inst.AppName))
}
