// Package connection implements the rosso-cli side of the Redis protocol.
//
//   - client.go: a single TCP connection sending commands as RESP arrays
//   - value.go: decoded server replies
//
// The client is not safe for concurrent use; the CLI issues one command
// at a time.
package connection
