package haproxy

import (
	"fmt"

	"github.com/skillsenselab/hostagent/errors"
	"github.com/skillsenselab/hostagent/logger"
)

// Registry maps instance names to clients. It is built once at startup and
// read-only thereafter. An instance that fails its startup health check is
// excluded for the process lifetime; recovery requires a restart.
type Registry struct {
	clients map[string]*Client
	order   []string
	log     *logger.Logger
}

// NewRegistry builds a registry from the configured instance list. Per
// entry the address is parsed, a client constructed and health-checked;
// any failure is logged and the instance is simply absent.
func NewRegistry(cfg Config) *Registry {
	cfg.ApplyDefaults()

	r := &Registry{
		clients: make(map[string]*Client),
		log:     logger.WithComponent("haproxy"),
	}

	entries, err := cfg.ParseInstances()
	if err != nil {
		r.log.Error("invalid instance configuration", logger.ErrorFields("parse instances", err))
		return r
	}

	for _, entry := range entries {
		r.add(entry, cfg)
	}

	if len(r.order) == 0 {
		r.log.Warn("no haproxy instances registered")
	} else {
		r.log.Info("haproxy instances registered", logger.Fields("instances", r.order))
	}
	return r
}

// NewRegistryWithClients builds a registry from pre-constructed clients,
// bypassing address validation and health checks. Duplicate names keep the
// first client.
func NewRegistryWithClients(clients ...*Client) *Registry {
	r := &Registry{
		clients: make(map[string]*Client),
		log:     logger.WithComponent("haproxy"),
	}
	for _, client := range clients {
		if _, exists := r.clients[client.Name()]; exists {
			continue
		}
		r.clients[client.Name()] = client
		r.order = append(r.order, client.Name())
	}
	return r
}

func (r *Registry) add(entry InstanceConfig, cfg Config) {
	addr, err := ParseAddress(entry.Address)
	if err != nil {
		r.log.Error("skipping instance with bad address", logger.Fields(
			logger.FieldInstance, entry.Name,
			"address", entry.Address,
			logger.FieldError, err.Error(),
		))
		return
	}

	client, err := NewClient(entry.Name, addr, cfg.Timeout)
	if err != nil {
		r.log.Error("skipping unreachable instance", logger.Fields(
			logger.FieldInstance, entry.Name,
			"address", entry.Address,
			logger.FieldError, err.Error(),
		))
		return
	}

	if !client.HealthCheck() {
		r.log.Error("instance failed health check, excluding for process lifetime", logger.Fields(
			logger.FieldInstance, entry.Name,
			"address", entry.Address,
		))
		return
	}

	if _, exists := r.clients[entry.Name]; exists {
		r.log.Warn("duplicate instance name, keeping first", logger.Fields(
			logger.FieldInstance, entry.Name,
		))
		return
	}

	r.clients[entry.Name] = client
	r.order = append(r.order, entry.Name)
	r.log.Info("haproxy instance ready", logger.Fields(
		logger.FieldInstance, entry.Name,
		"address", entry.Address,
	))
}

// Resolve returns the client for name. An empty name prefers the instance
// named "default", falls back to the sole registered instance, and
// otherwise demands disambiguation. A named lookup is exact.
func (r *Registry) Resolve(name string) (*Client, error) {
	if name == "" {
		if client, ok := r.clients[DefaultInstanceName]; ok {
			return client, nil
		}
		switch len(r.order) {
		case 0:
			return nil, errors.NotFound("haproxy instance", "")
		case 1:
			return r.clients[r.order[0]], nil
		default:
			return nil, errors.Validation(fmt.Sprintf(
				"multiple haproxy instances configured, specify one of %v", r.Names()))
		}
	}

	client, ok := r.clients[name]
	if !ok {
		return nil, errors.NotFound("haproxy instance", name).WithDetail("available", r.Names())
	}
	return client, nil
}

// Names returns registered instance names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered instances.
func (r *Registry) Len() int { return len(r.order) }
