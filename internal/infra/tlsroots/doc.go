// Package tlsroots provides TLS material for the Redis protocol listener
// and rosso-cli.
//
//   - roots.go: CA pools and tls.Config construction
//   - watcher.go: server key pair hot-reload via fsnotify
package tlsroots
