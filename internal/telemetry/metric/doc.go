// Package metric provides Prometheus metrics for rosso.
//
//   - prometheus.go: registry of server metrics and the HTTP handler
//   - collector.go: keyspace collector reading live counters on scrape
//
// Metrics are exposed at /metrics on the admin listener.
package metric
