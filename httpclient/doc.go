// Package httpclient is a small JSON-over-HTTP client used for talking to
// infrastructure endpoints such as Eureka servers and Spring actuators.
//
// Every request is one-shot: no retry, no connection affinity beyond the
// standard library's pooling. Failures map onto the shared error taxonomy,
// so callers can translate them to API responses without inspecting
// transport details.
package httpclient
