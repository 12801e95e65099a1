// Package observability wires OpenTelemetry tracing and metrics into the
// agent. Everything is off by default; enabling it points the OTLP HTTP
// exporters at a collector and registers the global providers.
//
//	provider, err := observability.Init(ctx, cfg, "hostagent", version.Get().Version)
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics.RecordDiscovery(ctx, "docker", "ok", 12, elapsed)
package observability
