// Package logger provides structured logging for the host agent using
// zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields.
//
// # Usage
//
//	log := logger.WithComponent("haproxy")
//	log.Info("state changed", logger.Fields("backend", "web", "server", "srv1"))
package logger
