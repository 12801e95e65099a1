// Package eureka discovers applications registered in a Netflix Eureka
// service registry.
package eureka

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillsenselab/hostagent/discovery"
	"github.com/skillsenselab/hostagent/eureka"
	"github.com/skillsenselab/hostagent/logger"
	"github.com/skillsenselab/hostagent/plugin"
)

// versionMetadataKeys are the metadata fields checked, in order, for an
// application version.
var versionMetadataKeys = []string{
	"version",
	"app.version",
	"application.version",
	"build.version",
	"implementation.version",
}

// Discoverer lists registry instances as applications.
type Discoverer struct {
	client *eureka.Client
	log    *logger.Logger
}

// Factory returns a discoverer factory bound to the given configuration.
// Construction fails when eureka is disabled, which the plugin loader
// logs and tolerates.
func Factory(cfg eureka.Config) plugin.Factory[discovery.Discoverer] {
	return func() (discovery.Discoverer, error) {
		if !cfg.Enabled {
			return nil, fmt.Errorf("eureka: discoverer disabled in configuration")
		}
		client, err := eureka.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return &Discoverer{
			client: client,
			log:    logger.WithComponent("discovery.eureka"),
		}, nil
	}
}

// NewDiscoverer wraps an existing client, primarily for tests.
func NewDiscoverer(client *eureka.Client) *Discoverer {
	return &Discoverer{
		client: client,
		log:    logger.WithComponent("discovery.eureka"),
	}
}

// Name implements plugin.Capability.
func (d *Discoverer) Name() string { return "eureka" }

// Discover queries the registry and normalizes each instance.
func (d *Discoverer) Discover(ctx context.Context) ([]discovery.Application, error) {
	instances, err := d.client.Applications(ctx)
	if err != nil {
		return nil, err
	}

	apps := make([]discovery.Application, 0, len(instances))
	for _, inst := range instances {
		metadata := map[string]any{
			"source":           "eureka",
			"instance_id":      inst.InstanceID,
			"ip":               inst.IP,
			"home_page_url":    inst.HomePageURL,
			"eureka_status":    inst.Status,
			"vip_address":      inst.VIPAddress,
			"health_check_url": inst.HealthCheckURL,
			"status_page_url":  inst.StatusPageURL,
			"eureka_metadata":  inst.Metadata,
		}
		if inst.Port != 0 {
			metadata["port"] = inst.Port
		}

		apps = append(apps, discovery.Application{
			Name:      inst.AppName,
			Version:   versionFromMetadata(inst.Metadata),
			Status:    mapStatus(inst.Status),
			StartTime: discovery.Unknown, // the registry does not report it
			Metadata:  metadata,
		})
	}

	d.log.Debug("registry instances discovered", logger.Fields("count", len(apps)))
	return apps, nil
}

func versionFromMetadata(metadata map[string]any) string {
	for _, key := range versionMetadataKeys {
		if value, ok := metadata[key]; ok {
			return fmt.Sprint(value)
		}
	}
	return discovery.Unknown
}

// mapStatus maps a Eureka instance status onto the normalized vocabulary.
func mapStatus(status string) string {
	switch strings.ToUpper(status) {
	case "UP":
		return discovery.StatusOnline
	case "DOWN":
		return discovery.StatusOffline
	case "STARTING":
		return discovery.StatusStarting
	case "OUT_OF_SERVICE":
		return discovery.StatusMaintenance
	default:
		return discovery.StatusUnknown
	}
}
