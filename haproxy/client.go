package haproxy

import (
	"fmt"
	"strings"
	"time"

	"github.com/skillsenselab/hostagent/errors"
	"github.com/skillsenselab/hostagent/logger"
)

// ServerState is the externally settable dimension of a backend server.
type ServerState string

const (
	StateReady ServerState = "ready"
	StateDrain ServerState = "drain"
	StateMaint ServerState = "maint"
)

// ValidStates lists the accepted server states.
func ValidStates() []ServerState {
	return []ServerState{StateReady, StateDrain, StateMaint}
}

// Valid reports whether s is an accepted server state.
func (s ServerState) Valid() bool {
	switch s {
	case StateReady, StateDrain, StateMaint:
		return true
	}
	return false
}

// Client talks to one HAProxy process over its admin endpoint. It holds no
// connection state: every operation is a fresh one-shot exchange, so
// concurrent calls against the same instance do not interfere.
type Client struct {
	name      string
	transport Transport
	log       *logger.Logger
}

// NewClient validates the address and builds a client for it. The caller
// is expected to run HealthCheck before trusting the instance.
func NewClient(name string, addr AddressSpec, timeout time.Duration) (*Client, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return NewClientWithTransport(name, NewTransport(addr, timeout)), nil
}

// NewClientWithTransport builds a client over a caller-supplied transport.
func NewClientWithTransport(name string, transport Transport) *Client {
	return &Client{
		name:      name,
		transport: transport,
		log:       logger.WithComponent("haproxy").WithFields(map[string]interface{}{logger.FieldInstance: name}),
	}
}

// Name returns the instance name this client serves.
func (c *Client) Name() string { return c.name }

// Info runs "show info" and returns its key/value lines.
func (c *Client) Info() (map[string]string, error) {
	resp, err := c.transport.Send("show info")
	if err != nil {
		return nil, err
	}

	info := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(resp), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		info[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return info, nil
}

// Backends lists the backend names known to the instance, sorted.
func (c *Client) Backends() ([]string, error) {
	rows, err := c.stats()
	if err != nil {
		return nil, err
	}
	backends := backendNames(rows)
	c.log.Debug("backends listed", logger.Fields("count", len(backends)))
	return backends, nil
}

// Servers lists the real servers of one backend.
func (c *Client) Servers(backend string) ([]ServerRecord, error) {
	rows, err := c.stats()
	if err != nil {
		return nil, err
	}
	return serverRecords(rows, backend), nil
}

// Server returns one server of a backend, or a not-found error.
func (c *Client) Server(backend, server string) (*ServerRecord, error) {
	servers, err := c.Servers(backend)
	if err != nil {
		return nil, err
	}
	for i := range servers {
		if servers[i].Name == server {
			return &servers[i], nil
		}
	}
	return nil, errors.NotFound("server", backend+"/"+server)
}

// SetServerState transitions a server to the given state. Transitions are
// unconditional (any state to any state), but unknown state literals are
// rejected before any I/O. The admin protocol reports failure in-band: a
// non-empty response mentioning "error" or "invalid" means the command was
// rejected even though the transport succeeded.
func (c *Client) SetServerState(backend, server string, state ServerState) error {
	if !state.Valid() {
		return errors.Validation(fmt.Sprintf("invalid state %q, must be one of %v", state, ValidStates()))
	}

	command := fmt.Sprintf("set server %s/%s state %s", backend, server, state)
	resp, err := c.transport.Send(command)
	if err != nil {
		return err
	}

	if trimmed := strings.TrimSpace(resp); trimmed != "" {
		lowered := strings.ToLower(trimmed)
		if strings.Contains(lowered, "error") || strings.Contains(lowered, "invalid") {
			c.log.Error("state change rejected", logger.Fields(
				"backend", backend,
				"server", server,
				"response", trimmed,
			))
			return errors.Command(trimmed)
		}
	}

	c.log.Info("server state changed", logger.Fields(
		"backend", backend,
		"server", server,
		"state", string(state),
	))
	return nil
}

// HealthCheck reports whether the instance answers "show info" with a
// version. It doubles as the construction-time liveness probe.
func (c *Client) HealthCheck() bool {
	info, err := c.Info()
	if err != nil {
		c.log.Warn("health check failed", logger.ErrorFields("show info", err))
		return false
	}
	_, ok := info["Version"]
	return ok
}

func (c *Client) stats() ([]map[string]string, error) {
	resp, err := c.transport.Send("show stat")
	if err != nil {
		return nil, err
	}
	return parseStatTable(resp, c.log), nil
}
