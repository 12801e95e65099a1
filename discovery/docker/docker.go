// Package docker discovers running containers through the Docker Engine
// SDK and reports them as applications. Container state is mapped onto the
// normalized status vocabulary; the image tag doubles as the version.
package docker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/skillsenselab/hostagent/discovery"
	"github.com/skillsenselab/hostagent/logger"
	"github.com/skillsenselab/hostagent/plugin"
	"github.com/skillsenselab/hostagent/util"
)

// composeWorkingDirLabel carries the compose project directory when the
// container was started by docker compose.
const composeWorkingDirLabel = "com.docker.compose.project.working_dir"

// Config holds docker discoverer configuration.
type Config struct {
	// Enabled gates the discoverer. On by default.
	Enabled *bool `yaml:"enabled" mapstructure:"enabled"`

	// Host is the Docker daemon endpoint.
	Host string `yaml:"host" mapstructure:"host"`

	// Timeout bounds each Engine API call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Enabled == nil {
		c.Enabled = util.Ptr(true)
	}
	if c.Host == "" {
		c.Host = "unix:///var/run/docker.sock"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// engineAPI is the slice of the Engine client the discoverer uses.
type engineAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
}

// Discoverer finds running containers.
type Discoverer struct {
	cfg    Config
	engine engineAPI
	log    *logger.Logger
}

// Factory returns a discoverer factory bound to the given configuration.
func Factory(cfg Config) plugin.Factory[discovery.Discoverer] {
	return func() (discovery.Discoverer, error) {
		cfg.ApplyDefaults()
		if !util.Deref(cfg.Enabled) {
			return nil, fmt.Errorf("docker: discoverer disabled in configuration")
		}

		cli, err := client.NewClientWithOpts(
			client.WithHost(cfg.Host),
			client.WithAPIVersionNegotiation(),
		)
		if err != nil {
			return nil, fmt.Errorf("docker: create client: %w", err)
		}
		return newDiscoverer(cfg, cli), nil
	}
}

func newDiscoverer(cfg Config, engine engineAPI) *Discoverer {
	return &Discoverer{
		cfg:    cfg,
		engine: engine,
		log:    logger.WithComponent("discovery.docker"),
	}
}

// Name implements plugin.Capability.
func (d *Discoverer) Name() string { return "docker" }

// Discover lists running containers. Per-container inspect failures are
// logged and degrade that container's metadata instead of failing the run.
func (d *Discoverer) Discover(ctx context.Context) ([]discovery.Application, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	containers, err := d.engine.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("docker: list containers: %w", err)
	}

	apps := make([]discovery.Application, 0, len(containers))
	for _, c := range containers {
		if c.ID == "" || len(c.Names) == 0 {
			d.log.Warn("skipping container without id or name", logger.Fields("container", c.ID))
			continue
		}

		name := strings.TrimPrefix(c.Names[0], "/")
		image, tag := splitImageTag(c.Image)

		metadata := map[string]any{
			"source":         "docker",
			"container_id":   c.ID,
			"container_name": name,
			"image":          image,
			"tag":            tag,
			"image_full":     c.Image,
			"docker_status":  c.Status,
			"docker_state":   c.State,
		}
		if port := publishedPort(c.Ports); port != 0 {
			metadata["port"] = port
		}

		startTime := discovery.Unknown
		if info, inspectErr := d.engine.ContainerInspect(ctx, c.ID); inspectErr != nil {
			d.log.Warn("container inspect failed", logger.Fields(
				"container", c.ID,
				logger.FieldError, inspectErr.Error(),
			))
		} else {
			state := inspectedState(info)
			if state != nil && state.StartedAt != "" {
				if t, parseErr := time.Parse(time.RFC3339Nano, state.StartedAt); parseErr == nil {
					startTime = t.UTC().Format(time.RFC3339)
				}
			}
			if state != nil && state.Pid != 0 {
				metadata["pid"] = state.Pid
			}
			if info.Config != nil {
				if dir := info.Config.Labels[composeWorkingDirLabel]; dir != "" {
					metadata["compose_project_dir"] = dir
				}
			}
		}

		apps = append(apps, discovery.Application{
			Name:      name,
			Version:   tag,
			Status:    mapState(c.State),
			StartTime: startTime,
			Metadata:  metadata,
		})
	}

	d.log.Debug("containers discovered", logger.Fields("count", len(apps)))
	return apps, nil
}

// inspectedState extracts the state from an inspect response. A partial
// response can lack the embedded base or the state, so both are checked
// before any field access.
func inspectedState(info container.InspectResponse) *container.State {
	if info.ContainerJSONBase == nil {
		return nil
	}
	return info.State
}

// mapState maps a Docker container state onto the normalized vocabulary.
func mapState(state string) string {
	switch strings.ToLower(state) {
	case "running":
		return discovery.StatusOnline
	case "exited", "created", "removing", "dead":
		return discovery.StatusOffline
	case "paused":
		return discovery.StatusMaintenance
	case "restarting":
		return discovery.StatusRestarting
	default:
		return discovery.StatusUnknown
	}
}

// splitImageTag splits "repo/image:tag" on the last colon that is part of
// a tag, not a registry port.
func splitImageTag(image string) (repo, tag string) {
	idx := strings.LastIndex(image, ":")
	if idx < 0 || strings.Contains(image[idx+1:], "/") {
		return image, "latest"
	}
	return image[:idx], image[idx+1:]
}

// publishedPort picks the first host-published port, falling back to the
// first exposed container port.
func publishedPort(ports []container.Port) int {
	for _, p := range ports {
		if p.PublicPort != 0 {
			return int(p.PublicPort)
		}
	}
	for _, p := range ports {
		if p.PrivatePort != 0 {
			return int(p.PrivatePort)
		}
	}
	return 0
}
