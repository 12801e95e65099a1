package haproxyctl

import (
	"context"
	"net/http"
	"testing"

	"github.com/skillsenselab/hostagent/haproxy"
)

const statPayload = `# pxname,svname,status,weight,addr
app,web1,UP,100,10.0.0.1:8080
app,web2,DRAIN,100,10.0.0.2:8080
app,BACKEND,UP,200,
api,api1,UP,100,10.0.1.1:9090
api,BACKEND,UP,100,
`

// stubTransport replays canned responses and records commands.
type stubTransport struct {
	commands  []string
	responses map[string]string
}

func (s *stubTransport) Send(command string) (string, error) {
	s.commands = append(s.commands, command)
	return s.responses[command], nil
}

func newController(instances ...string) (*Controller, map[string]*stubTransport) {
	transports := make(map[string]*stubTransport, len(instances))
	clients := make([]*haproxy.Client, 0, len(instances))
	for _, name := range instances {
		st := &stubTransport{responses: map[string]string{"show stat": statPayload}}
		transports[name] = st
		clients = append(clients, haproxy.NewClientWithTransport(name, st))
	}
	return New(haproxy.NewRegistryWithClients(clients...)), transports
}

func TestHandleGetBackends(t *testing.T) {
	c, _ := newController("default")

	env := c.HandleGet(context.Background(), []string{"backends"}, nil)
	if !env.Success || env.StatusCode != http.StatusOK {
		t.Fatalf("envelope = %+v", env)
	}
	data := env.Data.(map[string]any)
	if data["count"] != 2 || data["instance"] != "default" {
		t.Errorf("data = %v", data)
	}
}

func TestHandleGetServers(t *testing.T) {
	c, _ := newController("default")

	env := c.HandleGet(context.Background(), []string{"backends", "app", "servers"}, nil)
	if !env.Success {
		t.Fatalf("envelope = %+v", env)
	}
	data := env.Data.(map[string]any)
	if data["backend"] != "app" || data["count"] != 2 {
		t.Errorf("data = %v", data)
	}
}

func TestHandleGetNamedInstance(t *testing.T) {
	c, _ := newController("default", "edge")

	env := c.HandleGet(context.Background(), []string{"edge", "backends"}, nil)
	if !env.Success {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Data.(map[string]any)["instance"] != "edge" {
		t.Errorf("data = %v", env.Data)
	}

	env = c.HandleGet(context.Background(), []string{"ghost", "backends"}, nil)
	if env.Success || env.StatusCode != http.StatusNotFound {
		t.Errorf("unknown instance: envelope = %+v", env)
	}
}

func TestHandleGetUnknownPath(t *testing.T) {
	c, _ := newController("default")

	for _, path := range [][]string{
		{},
		{"backends", "app"},
		{"frontends"},
	} {
		env := c.HandleGet(context.Background(), path, nil)
		if env.Success {
			t.Errorf("path %v should fail, got %+v", path, env)
		}
	}
}

func TestHandleActionDrain(t *testing.T) {
	c, transports := newController("default")

	env := c.HandleAction(context.Background(),
		[]string{"backends", "app", "servers", "web1", "action"},
		map[string]any{"action": "drain"})

	if !env.Success || env.StatusCode != http.StatusOK {
		t.Fatalf("envelope = %+v", env)
	}
	commands := transports["default"].commands
	if len(commands) != 1 || commands[0] != "set server app/web1 state drain" {
		t.Errorf("commands = %v", commands)
	}
}

func TestHandleActionInvalid(t *testing.T) {
	c, transports := newController("default")

	tests := []struct {
		name string
		path []string
		body map[string]any
	}{
		{"missing action", []string{"backends", "app", "servers", "web1", "action"}, map[string]any{}},
		{"bogus action", []string{"backends", "app", "servers", "web1", "action"}, map[string]any{"action": "stopped"}},
		{"short path", []string{"backends", "app"}, map[string]any{"action": "drain"}},
		{"malformed path", []string{"backends", "app", "frontends", "web1", "action"}, map[string]any{"action": "drain"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := c.HandleAction(context.Background(), tc.path, tc.body)
			if env.Success || env.StatusCode != http.StatusBadRequest {
				t.Errorf("envelope = %+v, want 400 failure", env)
			}
		})
	}
	if got := len(transports["default"].commands); got != 0 {
		t.Errorf("invalid requests reached the socket: %d commands", got)
	}
}

func TestHandleActionCommandRejected(t *testing.T) {
	c, transports := newController("default")
	transports["default"].responses["set server app/web9 state maint"] = "error: no such server\n"

	env := c.HandleAction(context.Background(),
		[]string{"backends", "app", "servers", "web9", "action"},
		map[string]any{"action": "maint"})

	if env.Success || env.StatusCode != http.StatusBadGateway {
		t.Errorf("envelope = %+v, want 502 failure", env)
	}
}
