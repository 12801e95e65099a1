// Package errors provides unified error handling for the host agent.
// It implements structured error types with machine-readable codes and
// HTTP status mapping so the API layer can distinguish "load balancer
// unreachable" from "command rejected" from "malformed request".
package errors
