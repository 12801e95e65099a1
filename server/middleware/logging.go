package middleware

import (
	"net/http"
	"time"

	"github.com/skillsenselab/hostagent/logger"
	"github.com/skillsenselab/hostagent/observability"
)

// RequestLogger returns middleware that logs every request with method,
// path, status, and duration, and records the request metric. Health-check
// traffic is skipped to keep probe noise out of the logs.
func RequestLogger(log *logger.Logger, metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbeEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			if metrics != nil {
				metrics.RecordRequest(r.Context(), r.Method, r.URL.Path, sw.status, duration)
			}

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      sw.status,
				"duration_ms": duration.Milliseconds(),
			}
			if id := r.Header.Get("X-Request-Id"); id != "" {
				fields["request_id"] = id
			}

			switch {
			case sw.status >= 500:
				log.Error("request completed", fields)
			case sw.status >= 400:
				log.Warn("request completed", fields)
			default:
				log.Debug("request completed", fields)
			}
		})
	}
}

func isProbeEndpoint(path string) bool {
	return path == "/health" || path == "/alive"
}
