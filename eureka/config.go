package eureka

import (
	"fmt"
	"strings"
	"time"
)

// Config holds Eureka client configuration.
type Config struct {
	// Enabled gates the eureka discoverer and controller. Off by default
	// because most hosts have no registry nearby.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// URL is the Eureka server base URL, e.g. "http://eureka.internal:8761".
	URL string `yaml:"url" mapstructure:"url"`

	// Timeout bounds each registry and actuator request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Username and Password enable basic auth against the registry when
	// set. Actuator calls go unauthenticated.
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Validate checks the configuration. URL is only demanded when the
// client is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.URL == "" {
		return fmt.Errorf("eureka.url is required when eureka is enabled")
	}
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("eureka.url must be an http(s) URL (got: %s)", c.URL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("eureka.timeout must be positive (got: %s)", c.Timeout)
	}
	return nil
}
