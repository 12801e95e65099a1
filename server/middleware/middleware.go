// Package middleware provides the HTTP middleware stack for the agent's
// API server: panic recovery, request IDs, CORS, body-size limiting,
// optional rate limiting, and request logging.
package middleware

import (
	"net/http"
)

// Middleware wraps an http.Handler with additional behavior. This is the
// standard Go middleware signature and works for any handler mounted on
// the server's mux, not just Gin routes.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the
// outermost (runs first on a request, last on a response).
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
