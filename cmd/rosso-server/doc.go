// Package main provides the entry point for rosso-server.
//
// rosso-server is an in-memory key-value server speaking the Redis
// protocol (RESP). It serves string commands with lazy expiry and an
// optional admin HTTP endpoint for health, info and Prometheus metrics.
//
// Usage:
//
//	rosso-server [flags]
//	rosso-server --config /etc/rosso/rosso.yaml
//	rosso-server hash-password
//
// Configuration is layered: built-in defaults, the YAML file, ROSSO_*
// environment variables, then command-line flags.
package main
