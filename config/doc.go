// Package config loads the agent's configuration from a YAML file, a .env
// file, and HOSTAGENT_* environment variables, in that order of
// precedence (later wins).
//
//	cfg, err := config.Load()
//
// Each functional area owns its section struct (server, haproxy, eureka,
// discovery providers, logging, observability); this package only
// composes them and drives defaults and validation.
package config
