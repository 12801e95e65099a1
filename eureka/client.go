package eureka

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillsenselab/hostagent/errors"
	"github.com/skillsenselab/hostagent/httpclient"
	"github.com/skillsenselab/hostagent/logger"
)

// Valid actuator log levels.
var logLevels = []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "OFF"}

// ValidLogLevels returns the log levels the actuator accepts.
func ValidLogLevels() []string {
	out := make([]string, len(logLevels))
	copy(out, logLevels)
	return out
}

// Client talks to one Eureka server and to the actuators of the
// instances it registers.
type Client struct {
	http *httpclient.Client
	log  *logger.Logger
}

// NewClient builds a client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpCfg := httpclient.Config{
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
		Headers: map[string]string{"Accept": "application/json"},
	}
	if cfg.Username != "" {
		httpCfg.Auth = &httpclient.AuthConfig{
			Type:     "basic",
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	httpClient, err := httpclient.New(httpCfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		http: httpClient,
		log:  logger.WithComponent("eureka"),
	}, nil
}

// Applications returns every registered instance across all applications.
func (c *Client) Applications(ctx context.Context) ([]Instance, error) {
	resp, err := httpclient.Get[registryResponse](c.http, ctx, "/eureka/apps")
	if err != nil {
		return nil, err
	}

	var instances []Instance
	for _, app := range resp.Data.Applications.Application {
		for _, w := range app.Instance {
			instances = append(instances, w.normalize(app.Name))
		}
	}

	c.log.Debug("registry queried", logger.Fields("instances", len(instances)))
	return instances, nil
}

// FindInstance looks an instance up by its registry instance ID.
func (c *Client) FindInstance(ctx context.Context, instanceID string) (*Instance, error) {
	instances, err := c.Applications(ctx)
	if err != nil {
		return nil, err
	}
	for i := range instances {
		if instances[i].InstanceID == instanceID {
			return &instances[i], nil
		}
	}
	return nil, errors.NotFound("eureka instance", instanceID)
}

// Health fetches the instance's actuator health document.
func (c *Client) Health(ctx context.Context, inst *Instance) (map[string]any, error) {
	url, err := actuatorURL(inst, "health")
	if err != nil {
		return nil, err
	}
	resp, err := httpclient.Get[map[string]any](c.http, ctx, url)
	if err != nil {
		// A DOWN instance answers 503 with a health body; relay it.
		if resp != nil && len(resp.Data) > 0 {
			return resp.Data, nil
		}
		return nil, err
	}
	return resp.Data, nil
}

// Pause asks the instance to stop accepting traffic.
func (c *Client) Pause(ctx context.Context, inst *Instance) (map[string]any, error) {
	return c.postActuator(ctx, inst, "pause")
}

// Shutdown asks the instance to terminate gracefully.
func (c *Client) Shutdown(ctx context.Context, inst *Instance) (map[string]any, error) {
	return c.postActuator(ctx, inst, "shutdown")
}

// SetLogLevel changes one logger's level on the instance. The level must
// be a valid actuator level; loggerName defaults to ROOT.
func (c *Client) SetLogLevel(ctx context.Context, inst *Instance, loggerName, level string) error {
	if loggerName == "" {
		loggerName = "ROOT"
	}
	normalized := strings.ToUpper(level)
	if !validLogLevel(normalized) {
		return errors.Validation(fmt.Sprintf("invalid log level %q, must be one of %v", level, logLevels))
	}

	url, err := actuatorURL(inst, "loggers", loggerName)
	if err != nil {
		return err
	}
	body := map[string]string{"configuredLevel": normalized}
	if _, err := httpclient.Post[map[string]any](c.http, ctx, url, body); err != nil {
		return err
	}

	c.log.Info("log level changed", logger.Fields(
		logger.FieldInstance, inst.InstanceID,
		"logger", loggerName,
		"level", normalized,
	))
	return nil
}

func (c *Client) postActuator(ctx context.Context, inst *Instance, action string) (map[string]any, error) {
	url, err := actuatorURL(inst, action)
	if err != nil {
		return nil, err
	}
	resp, err := httpclient.Post[map[string]any](c.http, ctx, url, map[string]string{})
	if err != nil {
		return nil, err
	}

	c.log.Info("actuator command sent", logger.Fields(
		logger.FieldInstance, inst.InstanceID,
		logger.FieldOperation, action,
	))
	return resp.Data, nil
}

// actuatorURL derives an actuator endpoint from the instance's registered
// home page URL.
func actuatorURL(inst *Instance, parts ...string) (string, error) {
	if inst.HomePageURL == "" {
		return "", errors.Validation(fmt.Sprintf("instance %q has no home page URL", inst.InstanceID))
	}
	base := strings.TrimRight(inst.HomePageURL, "/")
	return base + "/actuator/" + strings.Join(parts, "/"), nil
}

func validLogLevel(level string) bool {
	for _, l := range logLevels {
		if level == l {
			return true
		}
	}
	return false
}
