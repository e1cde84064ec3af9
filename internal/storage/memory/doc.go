// Package memory provides the in-memory keyspace for rosso.
//
// The keyspace maps binary-safe keys to domain entries in a sharded map.
//
// Expiration:
//
// Entries carry an optional absolute deadline. An entry at or past its
// deadline is logically absent; every operation that meets one removes it
// before proceeding (lazy expiration). A Sweeper can additionally reclaim
// memory in the background, which never changes observable results.
//
// Thread Safety:
//
// Every operation on a key runs inside that key's shard write lock, so
// read-modify-write commands such as INCR and APPEND are atomic per key.
// Stored entries are never mutated in place; updates replace the entry.
package memory
