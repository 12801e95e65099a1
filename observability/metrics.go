package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the agent's metric instruments.
type Metrics struct {
	httpTotal         metric.Int64Counter
	httpDuration      metric.Float64Histogram
	discoveryTotal    metric.Int64Counter
	discoveryDuration metric.Float64Histogram
	discoveredApps    metric.Int64Gauge
	commandTotal      metric.Int64Counter
	errorTotal        metric.Int64Counter
}

// NewMetrics creates the agent's instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	httpTotal, err := meter.Int64Counter("hostagent.http.requests",
		metric.WithDescription("Total HTTP requests served"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http request counter: %w", err)
	}

	httpDuration, err := meter.Float64Histogram("hostagent.http.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http duration histogram: %w", err)
	}

	discoveryTotal, err := meter.Int64Counter("hostagent.discovery.runs",
		metric.WithDescription("Discovery runs per provider"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating discovery counter: %w", err)
	}

	discoveryDuration, err := meter.Float64Histogram("hostagent.discovery.duration",
		metric.WithDescription("Discovery run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating discovery duration histogram: %w", err)
	}

	discoveredApps, err := meter.Int64Gauge("hostagent.discovery.applications",
		metric.WithDescription("Applications found in the last discovery run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating discovered applications gauge: %w", err)
	}

	commandTotal, err := meter.Int64Counter("hostagent.control.commands",
		metric.WithDescription("Control commands dispatched, by controller and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating command counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("hostagent.errors",
		metric.WithDescription("Errors by component and code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error counter: %w", err)
	}

	return &Metrics{
		httpTotal:         httpTotal,
		httpDuration:      httpDuration,
		discoveryTotal:    discoveryTotal,
		discoveryDuration: discoveryDuration,
		discoveredApps:    discoveredApps,
		commandTotal:      commandTotal,
		errorTotal:        errorTotal,
	}, nil
}

func noopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.httpTotal.Add(ctx, 1, attrs)
	m.httpDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}

// RecordDiscovery records one provider's discovery run.
func (m *Metrics) RecordDiscovery(ctx context.Context, provider, outcome string, applications int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	m.discoveryTotal.Add(ctx, 1, attrs)
	m.discoveryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
	))
	m.discoveredApps.Record(ctx, int64(applications), metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordCommand records a dispatched control command.
func (m *Metrics) RecordCommand(ctx context.Context, controller, verb string, status int) {
	m.commandTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("controller", controller),
		attribute.String("verb", verb),
		attribute.Int("status", status),
	))
}

// RecordError records an error by component and code.
func (m *Metrics) RecordError(ctx context.Context, component, code string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("code", code),
	))
}
