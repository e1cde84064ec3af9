// Package handler provides the admin HTTP handlers for rosso.
//
//   - health.go: liveness
//   - info.go: build and runtime information
//
// JSON responses share the Response envelope in types.go.
package handler
