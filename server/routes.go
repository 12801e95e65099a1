package server

import (
	stderrors "errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/hostagent/control"
	"github.com/skillsenselab/hostagent/discovery"
	"github.com/skillsenselab/hostagent/haproxy"
	"github.com/skillsenselab/hostagent/observability"
	"github.com/skillsenselab/hostagent/server/middleware"
	"github.com/skillsenselab/hostagent/version"
)

var processStart = time.Now()

// RouteDeps carries everything the API routes need.
type RouteDeps struct {
	ServiceName string
	Aggregator  *discovery.Aggregator
	Dispatcher  *control.Dispatcher
	HAProxy     *haproxy.Registry
	Metrics     *observability.Metrics
}

// RegisterRoutes wires the agent's API onto the server.
func (s *Server) RegisterRoutes(deps RouteDeps) {
	s.engine.GET("/health", s.handleHealth(deps))
	s.engine.GET("/info", handleInfo(deps.ServiceName))

	api := s.engine.Group("/api/v1")
	api.GET("/apps", s.handleApps(deps))
	api.GET("/:controller/*path", s.handleControlGet(deps))

	actions := api.Group("")
	if s.config.RateLimit.RequestsPerMinute > 0 {
		actions.Use(middleware.RateLimit(s.config.RateLimit))
	}
	actions.POST("/:controller/*path", s.handleControlAction(deps))
}

func (s *Server) handleHealth(deps RouteDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := observability.NewAgentHealth(deps.ServiceName, version.Get().Version)

		if deps.HAProxy != nil {
			for _, name := range deps.HAProxy.Names() {
				component := observability.Health{Name: "haproxy:" + name, Status: observability.HealthStatusUp}
				client, err := deps.HAProxy.Resolve(name)
				if err != nil || !client.HealthCheck() {
					component.Status = observability.HealthStatusDown
					component.Message = "admin socket unreachable"
				}
				health.AddComponent(component)
			}
		}
		if deps.Aggregator != nil {
			for _, provider := range deps.Aggregator.Providers() {
				health.AddComponent(observability.Health{
					Name:   "discovery:" + provider,
					Status: observability.HealthStatusUp,
				})
			}
		}

		c.JSON(http.StatusOK, health)
	}
}

func handleInfo(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.Get()
		hostname, _ := os.Hostname()
		c.JSON(http.StatusOK, gin.H{
			"service":    serviceName,
			"hostname":   hostname,
			"version":    v.Version,
			"git_commit": v.GitCommit,
			"build_time": v.BuildTime,
			"go_version": v.GoVersion,
			"is_dirty":   v.IsDirty,
			"uptime":     time.Since(processStart).String(),
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (s *Server) handleApps(deps RouteDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostname, _ := os.Hostname()
		apps := deps.Aggregator.Run(c.Request.Context())
		render(c, control.Ok(gin.H{
			"server": gin.H{
				"name":         hostname,
				"applications": apps,
			},
		}))
	}
}

func (s *Server) handleControlGet(deps RouteDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		controller := c.Param("controller")
		ctx, span := observability.StartSpan(c.Request.Context(), "control.get",
			trace.WithAttributes(attribute.String("controller", controller)))
		defer span.End()

		env := deps.Dispatcher.DispatchGet(ctx, controller, splitSegments(c.Param("path")), flattenQuery(c))
		if !env.Success {
			observability.SetSpanError(ctx, stderrors.New(env.Error))
		}
		if deps.Metrics != nil {
			deps.Metrics.RecordCommand(ctx, controller, http.MethodGet, env.StatusCode)
		}
		render(c, env)
	}
}

func (s *Server) handleControlAction(deps RouteDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		controller := c.Param("controller")
		ctx, span := observability.StartSpan(c.Request.Context(), "control.action",
			trace.WithAttributes(attribute.String("controller", controller)))
		defer span.End()

		body := map[string]any{}
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				render(c, control.FailStatus(http.StatusBadRequest, "request body must be a JSON object"))
				return
			}
		}

		env := deps.Dispatcher.DispatchAction(ctx, controller, splitSegments(c.Param("path")), body)
		if !env.Success {
			observability.SetSpanError(ctx, stderrors.New(env.Error))
		}
		if deps.Metrics != nil {
			deps.Metrics.RecordCommand(ctx, controller, http.MethodPost, env.StatusCode)
		}
		render(c, env)
	}
}

func render(c *gin.Context, env control.Envelope) {
	c.JSON(env.StatusCode, env)
}

// splitSegments turns the Gin wildcard value "/backends/app/servers" into
// its path segments, dropping empty ones.
func splitSegments(wildcard string) []string {
	parts := strings.Split(wildcard, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func flattenQuery(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()
	if len(values) == 0 {
		return nil
	}
	query := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			query[key] = vals[0]
		}
	}
	return query
}
