package discovery

import (
	"context"
	"time"

	"github.com/skillsenselab/hostagent/errors"
	"github.com/skillsenselab/hostagent/logger"
	"github.com/skillsenselab/hostagent/observability"
	"github.com/skillsenselab/hostagent/plugin"
)

// Aggregator fans one discovery run out to every loaded discoverer.
type Aggregator struct {
	registry *plugin.Registry[Discoverer]
	metrics  *observability.Metrics
	log      *logger.Logger
}

// NewAggregator loads the given factories into a fresh registry. Factory
// failures are logged inside Load and leave the remaining providers intact.
// A nil metrics disables recording.
func NewAggregator(factories []plugin.Factory[Discoverer], metrics *observability.Metrics) *Aggregator {
	registry := plugin.NewRegistry[Discoverer]("discoverer")
	_ = registry.Load(factories) // only errors on double load

	return &Aggregator{
		registry: registry,
		metrics:  metrics,
		log:      logger.WithComponent("discovery"),
	}
}

// Run invokes every discoverer and concatenates the results in provider
// registration order. A provider error is logged against that provider
// and the run continues; the merged result is never nil.
func (a *Aggregator) Run(ctx context.Context) []Application {
	all := make([]Application, 0)

	for _, d := range a.registry.All() {
		start := time.Now()
		apps, err := d.Discover(ctx)
		elapsed := time.Since(start)
		if err != nil {
			a.log.Error("discoverer failed", logger.Fields(
				logger.FieldPlugin, d.Name(),
				logger.FieldError, err.Error(),
				logger.FieldDuration, elapsed.String(),
			))
			a.recordRun(ctx, d.Name(), "error", 0, elapsed)
			a.recordError(ctx, err)
			continue
		}
		a.log.Debug("discoverer finished", logger.Fields(
			logger.FieldPlugin, d.Name(),
			"applications", len(apps),
			logger.FieldDuration, elapsed.String(),
		))
		a.recordRun(ctx, d.Name(), "ok", len(apps), elapsed)
		all = append(all, apps...)
	}

	return all
}

// Providers returns the names of the loaded discoverers.
func (a *Aggregator) Providers() []string {
	return a.registry.Names()
}

func (a *Aggregator) recordRun(ctx context.Context, provider, outcome string, applications int, elapsed time.Duration) {
	if a.metrics != nil {
		a.metrics.RecordDiscovery(ctx, provider, outcome, applications, elapsed)
	}
}

func (a *Aggregator) recordError(ctx context.Context, err error) {
	if a.metrics == nil {
		return
	}
	code := string(errors.ErrCodeInternal)
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	a.metrics.RecordError(ctx, "discovery", code)
}
