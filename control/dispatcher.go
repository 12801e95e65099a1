package control

import (
	"context"
	"fmt"

	"github.com/skillsenselab/hostagent/errors"
	"github.com/skillsenselab/hostagent/logger"
	"github.com/skillsenselab/hostagent/plugin"
)

// Dispatcher resolves a controller by name and forwards the remaining
// request to it unchanged.
type Dispatcher struct {
	registry *plugin.Registry[Controller]
	log      *logger.Logger
}

// NewDispatcher loads the given factories into a fresh registry.
func NewDispatcher(factories []plugin.Factory[Controller]) *Dispatcher {
	registry := plugin.NewRegistry[Controller]("controller")
	_ = registry.Load(factories) // only errors on double load

	return &Dispatcher{
		registry: registry,
		log:      logger.WithComponent("control"),
	}
}

// Controllers returns the loaded controller names.
func (d *Dispatcher) Controllers() []string {
	return d.registry.Names()
}

// DispatchGet routes a GET request. An unknown controller is not found; a
// known controller without GET support is not implemented.
func (d *Dispatcher) DispatchGet(ctx context.Context, controller string, path []string, query map[string]string) Envelope {
	c, ok := d.registry.Get(controller)
	if !ok {
		return d.unknownController(controller)
	}

	getter, ok := c.(GetHandler)
	if !ok {
		err := errors.NotImplemented(controller, "GET")
		d.log.Warn("controller does not support reads", logger.Fields(logger.FieldPlugin, controller))
		return Fail(err)
	}

	return getter.HandleGet(ctx, path, query)
}

// DispatchAction routes a POST request.
func (d *Dispatcher) DispatchAction(ctx context.Context, controller string, path []string, body map[string]any) Envelope {
	c, ok := d.registry.Get(controller)
	if !ok {
		return d.unknownController(controller)
	}
	return c.HandleAction(ctx, path, body)
}

func (d *Dispatcher) unknownController(name string) Envelope {
	err := errors.NotFound("controller", name).
		WithDetail("available", d.registry.Names())
	d.log.Warn("unknown controller requested", logger.Fields(
		logger.FieldPlugin, name,
		"available", fmt.Sprint(d.registry.Names()),
	))
	return Fail(err)
}
