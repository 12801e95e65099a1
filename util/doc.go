// Package util holds small generic helpers shared across the agent:
// size parsing for request limits, secret masking for startup logs, and
// pointer helpers for optional config fields.
package util
