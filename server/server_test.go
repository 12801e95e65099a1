package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/skillsenselab/hostagent/control"
	"github.com/skillsenselab/hostagent/control/haproxyctl"
	"github.com/skillsenselab/hostagent/discovery"
	"github.com/skillsenselab/hostagent/haproxy"
	"github.com/skillsenselab/hostagent/logger"
	"github.com/skillsenselab/hostagent/plugin"
)

const statPayload = "# pxname,svname,status,weight,check_status\n" +
	"app,web1,UP,100,L7OK\n" +
	"app,web2,DRAIN,100,L7OK\n" +
	"app,BACKEND,UP,200,\n" +
	"static,FRONTEND,OPEN,,\n"

type stubTransport struct {
	commands  []string
	responses map[string]string
}

func (s *stubTransport) Send(command string) (string, error) {
	s.commands = append(s.commands, command)
	if resp, ok := s.responses[command]; ok {
		return resp, nil
	}
	return "", nil
}

type fakeDiscoverer struct {
	apps []discovery.Application
}

func (f *fakeDiscoverer) Name() string { return "fake" }

func (f *fakeDiscoverer) Discover(ctx context.Context) ([]discovery.Application, error) {
	return f.apps, nil
}

func newTestServer(t *testing.T, transport *stubTransport) *Server {
	t.Helper()

	registry := haproxy.NewRegistryWithClients(
		haproxy.NewClientWithTransport("default", transport),
	)
	dispatcher := control.NewDispatcher([]plugin.Factory[control.Controller]{
		haproxyctl.Factory(registry),
	})
	aggregator := discovery.NewAggregator([]plugin.Factory[discovery.Discoverer]{
		func() (discovery.Discoverer, error) {
			return &fakeDiscoverer{apps: []discovery.Application{
				{Name: "billing", Version: "2.4.1", Status: discovery.StatusOnline},
			}}, nil
		},
	}, nil)

	var cfg Config
	cfg.ApplyDefaults()

	srv := New(cfg, logger.NewDefault("test"), nil)
	srv.RegisterRoutes(RouteDeps{
		ServiceName: "hostagent",
		Aggregator:  aggregator,
		Dispatcher:  dispatcher,
		HAProxy:     registry,
	})
	return srv
}

func doRequest(t *testing.T, srv *Server, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.GinEngine().ServeHTTP(rec, req)

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, decoded
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Port != 11011 {
		t.Errorf("Port = %d, want 11011", cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate after defaults: %v", err)
	}

	bad := Config{Port: 70000}
	if err := bad.Validate(); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}

func TestInfoEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubTransport{})

	rec, body := doRequest(t, srv, http.MethodGet, "/info", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["service"] != "hostagent" {
		t.Errorf("service = %v", body["service"])
	}
	if body["version"] == "" {
		t.Error("version missing")
	}
}

func TestHealthEndpoint(t *testing.T) {
	transport := &stubTransport{responses: map[string]string{
		"show info": "Version: 2.8.3\nUptime_sec: 10\n",
	}}
	srv := newTestServer(t, transport)

	rec, body := doRequest(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "up" {
		t.Errorf("status = %v, body %v", body["status"], body)
	}
}

func TestHealthEndpointDegraded(t *testing.T) {
	// Empty "show info" means no Version key, so the instance is down.
	srv := newTestServer(t, &stubTransport{})

	rec, body := doRequest(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "degraded" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestAppsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubTransport{})

	rec, body := doRequest(t, srv, http.MethodGet, "/api/v1/apps", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["success"] != true {
		t.Fatalf("envelope = %v", body)
	}

	data := body["data"].(map[string]any)
	server := data["server"].(map[string]any)
	apps := server["applications"].([]any)
	if len(apps) != 1 {
		t.Fatalf("applications = %v", apps)
	}
	app := apps[0].(map[string]any)
	if app["name"] != "billing" || app["status"] != "online" {
		t.Errorf("application = %v", app)
	}
}

func TestControllerGet(t *testing.T) {
	transport := &stubTransport{responses: map[string]string{"show stat": statPayload}}
	srv := newTestServer(t, transport)

	rec, body := doRequest(t, srv, http.MethodGet, "/api/v1/haproxy/backends", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", rec.Code, body)
	}
	data := body["data"].(map[string]any)
	backends := data["backends"].([]any)
	if len(backends) != 1 || backends[0] != "app" {
		t.Errorf("backends = %v", backends)
	}
}

func TestControllerAction(t *testing.T) {
	transport := &stubTransport{responses: map[string]string{"show stat": statPayload}}
	srv := newTestServer(t, transport)

	rec, body := doRequest(t, srv, http.MethodPost,
		"/api/v1/haproxy/backends/app/servers/web1/action", `{"action":"drain"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %v", rec.Code, body)
	}
	if body["success"] != true {
		t.Errorf("envelope = %v", body)
	}

	want := "set server app/web1 state drain"
	found := false
	for _, cmd := range transport.commands {
		if cmd == want {
			found = true
		}
	}
	if !found {
		t.Errorf("commands = %v, want %q issued", transport.commands, want)
	}
}

func TestControllerActionRejected(t *testing.T) {
	transport := &stubTransport{responses: map[string]string{
		"set server app/web1 state drain": "Invalid server.\n",
	}}
	srv := newTestServer(t, transport)

	rec, body := doRequest(t, srv, http.MethodPost,
		"/api/v1/haproxy/backends/app/servers/web1/action", `{"action":"drain"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, body %v", rec.Code, body)
	}
	if body["success"] != false {
		t.Errorf("envelope = %v", body)
	}
}

func TestControllerActionMalformedBody(t *testing.T) {
	srv := newTestServer(t, &stubTransport{})

	rec, _ := doRequest(t, srv, http.MethodPost,
		"/api/v1/haproxy/backends/app/servers/web1/action", `not-json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUnknownController(t *testing.T) {
	srv := newTestServer(t, &stubTransport{})

	rec, body := doRequest(t, srv, http.MethodGet, "/api/v1/nginx/backends", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["success"] != false {
		t.Errorf("envelope = %v", body)
	}
}

func TestControlDispatchEmitsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	transport := &stubTransport{responses: map[string]string{"show stat": statPayload}}
	srv := newTestServer(t, transport)

	doRequest(t, srv, http.MethodGet, "/api/v1/haproxy/backends", "")
	doRequest(t, srv, http.MethodGet, "/api/v1/nginx/backends", "")

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Name() != "control.get" {
		t.Errorf("span name = %s, want control.get", spans[0].Name())
	}
	if len(spans[0].Events()) != 0 {
		t.Errorf("successful dispatch should not record error events: %v", spans[0].Events())
	}
	if len(spans[1].Events()) == 0 {
		t.Error("failed dispatch should record an error event on its span")
	}
}
