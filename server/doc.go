// Package server hosts the agent's control-plane HTTP API on a Gin engine
// with h2c support:
//
//	GET  /health              agent and load balancer health
//	GET  /info                build and version information
//	GET  /api/v1/apps         applications discovered on this host
//	GET  /api/v1/{controller}/...   controller reads
//	POST /api/v1/{controller}/...   controller actions
//
// Controller routes are dispatched to the control plugin registry; every
// response uses the standard envelope.
package server
