package cmap

// Op tells Compute what to do with the slot after the callback returns.
type Op int

const (
	// OpKeep leaves the slot untouched.
	OpKeep Op = iota
	// OpStore writes the returned value.
	OpStore
	// OpDelete removes the key.
	OpDelete
)

// Compute runs fn under the shard write lock with the current value for key.
// No other operation on the shard can interleave with fn.
// fn must not call back into the map.
func (m *Map[K, V]) Compute(key K, fn func(value V, exists bool) (V, Op)) {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	existing, exists := shard.items[key]
	newValue, op := fn(existing, exists)
	switch op {
	case OpStore:
		shard.items[key] = newValue
	case OpDelete:
		delete(shard.items, key)
	}
}

// DeleteIf removes every entry for which pred returns true and
// returns the number removed. Each shard is locked once.
func (m *Map[K, V]) DeleteIf(pred func(key K, value V) bool) int {
	removed := 0
	for _, shard := range m.shards {
		shard.mu.Lock()
		for k, v := range shard.items {
			if pred(k, v) {
				delete(shard.items, k)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed
}

// ShardStats returns statistics about each shard.
type ShardStats struct {
	Index int
	Count int
}

// Stats returns statistics about all shards.
func (m *Map[K, V]) Stats() []ShardStats {
	stats := make([]ShardStats, len(m.shards))
	for i, shard := range m.shards {
		shard.mu.RLock()
		stats[i] = ShardStats{
			Index: i,
			Count: len(shard.items),
		}
		shard.mu.RUnlock()
	}
	return stats
}
