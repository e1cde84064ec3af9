// Package domain defines the core data model of the rosso keyspace.
//
// Domain types are plain values without IO dependencies. This package contains:
//
//   - Value: the tagged payload stored under a key (string kind today)
//   - Entry: a value plus its optional expiration instant
//   - Integers: strict base-10 signed 64-bit parsing used by INCR and SET options
//   - Errors: the error taxonomy surfaced to clients as error replies
package domain
