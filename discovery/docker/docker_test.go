package docker

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/docker/api/types/container"

	"github.com/skillsenselab/hostagent/discovery"
	"github.com/skillsenselab/hostagent/util"
)

type fakeEngine struct {
	containers []container.Summary
	inspects   map[string]container.InspectResponse
	listErr    error
	inspectErr error
}

func (f *fakeEngine) ContainerList(context.Context, container.ListOptions) ([]container.Summary, error) {
	return f.containers, f.listErr
}

func (f *fakeEngine) ContainerInspect(_ context.Context, id string) (container.InspectResponse, error) {
	if f.inspectErr != nil {
		return container.InspectResponse{}, f.inspectErr
	}
	return f.inspects[id], nil
}

func testConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestDiscover(t *testing.T) {
	engine := &fakeEngine{
		containers: []container.Summary{
			{
				ID:     "abc123",
				Names:  []string{"/billing"},
				Image:  "registry.internal:5000/billing:2.4.1",
				State:  "running",
				Status: "Up 2 hours",
				Ports: []container.Port{
					{PrivatePort: 8080, PublicPort: 18080},
				},
			},
		},
		inspects: map[string]container.InspectResponse{
			"abc123": {
				ContainerJSONBase: &container.ContainerJSONBase{
					State: &container.State{
						StartedAt: "2026-08-30T10:00:00.123456789Z",
						Pid:       4242,
					},
				},
				Config: &container.Config{
					Labels: map[string]string{
						composeWorkingDirLabel: "/srv/billing",
					},
				},
			},
		},
	}

	d := newDiscoverer(testConfig(), engine)
	apps, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("got %d apps, want 1", len(apps))
	}

	app := apps[0]
	if app.Name != "billing" || app.Version != "2.4.1" || app.Status != discovery.StatusOnline {
		t.Errorf("unexpected app: %+v", app)
	}
	if app.StartTime != "2026-08-30T10:00:00Z" {
		t.Errorf("start time = %s", app.StartTime)
	}
	if app.Metadata["image"] != "registry.internal:5000/billing" {
		t.Errorf("image = %v", app.Metadata["image"])
	}
	if app.Metadata["port"] != 18080 || app.Metadata["pid"] != 4242 {
		t.Errorf("metadata = %v", app.Metadata)
	}
	if app.Metadata["compose_project_dir"] != "/srv/billing" {
		t.Errorf("compose dir = %v", app.Metadata["compose_project_dir"])
	}
}

func TestDiscoverInspectFailureDegrades(t *testing.T) {
	engine := &fakeEngine{
		containers: []container.Summary{
			{ID: "abc", Names: []string{"/app"}, Image: "app:1.0", State: "paused"},
		},
		inspectErr: fmt.Errorf("daemon busy"),
	}

	d := newDiscoverer(testConfig(), engine)
	apps, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("inspect failure must not drop the container")
	}
	if apps[0].StartTime != discovery.Unknown || apps[0].Status != discovery.StatusMaintenance {
		t.Errorf("unexpected app: %+v", apps[0])
	}
}

func TestDiscoverPartialInspectResponse(t *testing.T) {
	engine := &fakeEngine{
		containers: []container.Summary{
			{ID: "abc", Names: []string{"/app"}, Image: "app:1.0", State: "running"},
		},
		inspects: map[string]container.InspectResponse{
			"abc": {}, // neither base nor config populated
		},
	}

	d := newDiscoverer(testConfig(), engine)
	apps, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("partial inspect response must not drop the container")
	}
	if apps[0].StartTime != discovery.Unknown {
		t.Errorf("start time = %s, want %s", apps[0].StartTime, discovery.Unknown)
	}
	if _, ok := apps[0].Metadata["pid"]; ok {
		t.Error("pid should be absent without inspect state")
	}
	if _, ok := apps[0].Metadata["compose_project_dir"]; ok {
		t.Error("compose dir should be absent without inspect config")
	}
}

func TestDiscoverListFailure(t *testing.T) {
	engine := &fakeEngine{listErr: fmt.Errorf("cannot connect to the Docker daemon")}
	d := newDiscoverer(testConfig(), engine)

	if _, err := d.Discover(context.Background()); err == nil {
		t.Fatal("expected error when the daemon is unreachable")
	}
}

func TestFactoryDisabled(t *testing.T) {
	if _, err := Factory(Config{Enabled: util.Ptr(false)})(); err == nil {
		t.Fatal("disabled discoverer should fail construction")
	}
}

func TestMapState(t *testing.T) {
	tests := map[string]string{
		"running":    discovery.StatusOnline,
		"exited":     discovery.StatusOffline,
		"created":    discovery.StatusOffline,
		"dead":       discovery.StatusOffline,
		"paused":     discovery.StatusMaintenance,
		"restarting": discovery.StatusRestarting,
		"weird":      discovery.StatusUnknown,
	}
	for state, want := range tests {
		if got := mapState(state); got != want {
			t.Errorf("mapState(%q) = %q, want %q", state, got, want)
		}
	}
}

func TestSplitImageTag(t *testing.T) {
	tests := []struct {
		image string
		repo  string
		tag   string
	}{
		{"billing:2.4.1", "billing", "2.4.1"},
		{"registry:5000/billing:2.4.1", "registry:5000/billing", "2.4.1"},
		{"registry:5000/billing", "registry:5000/billing", "latest"},
		{"billing", "billing", "latest"},
	}
	for _, tc := range tests {
		repo, tag := splitImageTag(tc.image)
		if repo != tc.repo || tag != tc.tag {
			t.Errorf("splitImageTag(%q) = %q, %q; want %q, %q", tc.image, repo, tag, tc.repo, tc.tag)
		}
	}
}
