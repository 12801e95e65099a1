package haproxy

import (
	"fmt"
	"strings"
	"time"
)

// DefaultInstanceName is the instance an unnamed request resolves to.
const DefaultInstanceName = "default"

// Config holds HAProxy client configuration.
type Config struct {
	// Instances is a comma-separated list of `name=address-spec` pairs.
	// A single bare address spec configures one instance named "default".
	// Address specs are either a Unix socket path or `ipv4@host:port`.
	Instances string `yaml:"instances" mapstructure:"instances"`

	// Timeout bounds every admin-socket exchange.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// InstanceConfig is one named admin endpoint.
type InstanceConfig struct {
	Name    string
	Address string
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Instances == "" {
		c.Instances = "/var/run/haproxy.sock"
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
}

// Validate checks the instance list grammar. Address reachability is not
// checked here; unreachable instances are excluded at registry build time.
func (c *Config) Validate() error {
	entries, err := c.ParseInstances()
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("haproxy.instances names instance %q twice", e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("haproxy.timeout must be non-negative (got: %s)", c.Timeout)
	}
	return nil
}

// ParseInstances splits the configured instance list. Entries are
// `name=address-spec`; an entry with no `=` is the implicit "default"
// instance.
func (c *Config) ParseInstances() ([]InstanceConfig, error) {
	var entries []InstanceConfig
	for _, part := range strings.Split(c.Instances, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, address, found := strings.Cut(part, "=")
		if !found {
			entries = append(entries, InstanceConfig{Name: DefaultInstanceName, Address: part})
			continue
		}

		name = strings.TrimSpace(name)
		address = strings.TrimSpace(address)
		if name == "" || address == "" {
			return nil, fmt.Errorf("haproxy.instances entry %q must be name=address", part)
		}
		entries = append(entries, InstanceConfig{Name: name, Address: address})
	}
	return entries, nil
}
