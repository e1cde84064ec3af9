// Package service provides connection-level services for rosso.
//
// This package contains:
//
//   - AuthService: optional password authentication (argon2id hashes)
//     and per-client rate limiting
//
// Services are safe for concurrent use by all connection goroutines.
package service
