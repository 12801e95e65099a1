package discovery

import (
	"context"

	"github.com/skillsenselab/hostagent/plugin"
)

// Discoverer finds application instances from one source (service manager,
// container runtime, service registry).
type Discoverer interface {
	plugin.Capability

	// Discover returns the applications currently visible to this
	// provider. An empty slice and nil error means the source is healthy
	// but has nothing to report.
	Discover(ctx context.Context) ([]Application, error)
}

// Factories collects discoverer factories registered by provider packages.
var Factories plugin.FactorySet[Discoverer]

// Register adds a discoverer factory. Provider packages call this from
// init, so importing a provider is what enables it.
func Register(f plugin.Factory[Discoverer]) {
	Factories.Register(f)
}
