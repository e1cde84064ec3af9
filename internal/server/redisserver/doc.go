// Package redisserver serves the rosso keyspace over the Redis protocol.
//
// It implements the RESP2 request/reply subset used by string commands:
// requests are arrays of bulk strings (or inline lines), replies are simple
// strings, bulk strings, integers and errors.
//
// Connection-level commands are handled here:
//   - PING, QUIT, AUTH, CLIENT
//
// Everything else is delegated to the command dispatcher:
//   - GET, SET, APPEND, INCR, STRLEN, TTL, PTTL, DEL, EXISTS
package redisserver
