// Package httpserver provides the admin HTTP server for rosso.
//
// Endpoints:
//
//   - GET /healthz: liveness
//   - GET /v1/info: build, uptime and keyspace statistics
//   - GET /metrics: Prometheus exposition
//
// Routing uses chi; every request gets a request ID, panic recovery and
// an access log line.
package httpserver
