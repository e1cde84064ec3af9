// Package cmap provides a concurrent map keyed by strings.
//
// The map is split into a power-of-two number of shards, each guarded by its
// own RWMutex. Keys are routed to shards with seeded murmur3:
//
//   - Reads (Get, Count, Stats) take the shard read lock
//   - Writes (Compute, DeleteIf) take the shard write lock
//   - Compute runs a callback under the write lock, so read-modify-write
//     sequences on one key are atomic
//
// Usage:
//
//	m := cmap.NewWithShards[string, *Entry](32)
//	m.Compute("counter", func(e *Entry, ok bool) (*Entry, cmap.Op) {
//	    ...
//	})
package cmap
