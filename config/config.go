package config

import (
	"fmt"

	"github.com/skillsenselab/hostagent/discovery/docker"
	"github.com/skillsenselab/hostagent/discovery/svc"
	"github.com/skillsenselab/hostagent/eureka"
	"github.com/skillsenselab/hostagent/haproxy"
	"github.com/skillsenselab/hostagent/logger"
	"github.com/skillsenselab/hostagent/observability"
	"github.com/skillsenselab/hostagent/server"
)

// Config is the agent's full configuration tree.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	HAProxy       haproxy.Config       `yaml:"haproxy" mapstructure:"haproxy"`
	Eureka        eureka.Config        `yaml:"eureka" mapstructure:"eureka"`
	SVC           svc.Config           `yaml:"svc" mapstructure:"svc"`
	Docker        docker.Config        `yaml:"docker" mapstructure:"docker"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills in defaults across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "hostagent"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}

	c.Logging.ApplyDefaults()
	if c.Debug && c.Logging.Level == "info" {
		c.Logging.Level = "debug"
	}
	c.Server.ApplyDefaults()
	c.HAProxy.ApplyDefaults()
	c.Eureka.ApplyDefaults()
	c.SVC.ApplyDefaults()
	c.Docker.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the whole tree. Sections report their own errors.
func (c *Config) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, env := range validEnvs {
		if c.Environment == env {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}

	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.HAProxy.Validate(); err != nil {
		return err
	}
	if err := c.Eureka.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

// Load reads, defaults, and validates the configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := load(&cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
