package observability

// HealthStatus is the health state of a component or of the agent.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes one component, such as a load balancer instance or a
// discovery provider.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// AgentHealth is the aggregate reported on the health endpoint.
type AgentHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// NewAgentHealth creates an AgentHealth with status up.
func NewAgentHealth(service, version string) *AgentHealth {
	return &AgentHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent records a component result. A down component degrades the
// agent rather than taking it down: the agent itself is still serving.
func (ah *AgentHealth) AddComponent(h Health) {
	ah.Components = append(ah.Components, h)
	if h.Status != HealthStatusUp && ah.Status == HealthStatusUp {
		ah.Status = HealthStatusDegraded
	}
}
