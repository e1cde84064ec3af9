package cmap

import (
	"fmt"
	"strconv"
	"sync"
	"testing"
)

func set[V any](m *Map[string, V], key string, value V) {
	m.Compute(key, func(V, bool) (V, Op) { return value, OpStore })
}

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},  // invalid → default
		{-1, DefaultShardCount}, // invalid → default
		{3, DefaultShardCount},  // not power of 2 → default
		{1, 1},
		{2, 2},
		{8, 8},
		{64, 64},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[string, int](tt.input)
			if len(m.shards) != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d",
					tt.input, len(m.shards), tt.expected)
			}
		})
	}
}

func TestGet(t *testing.T) {
	m := NewWithShards[string, int](DefaultShardCount)

	set(m, "key1", 100)
	set(m, "key2", 200)

	val, ok := m.Get("key1")
	if !ok || val != 100 {
		t.Errorf("Get(key1) = (%d, %v), want (100, true)", val, ok)
	}

	val, ok = m.Get("nonexistent")
	if ok {
		t.Errorf("Get(nonexistent) = (%d, %v), want (0, false)", val, ok)
	}
}

func TestBinaryKeys(t *testing.T) {
	m := NewWithShards[string, int](DefaultShardCount)
	set(m, "a\x00b", 1)
	set(m, "a\x00c", 2)
	set(m, "", 3)

	if v, _ := m.Get("a\x00b"); v != 1 {
		t.Errorf("Get(a\\x00b) = %d, want 1", v)
	}
	if v, ok := m.Get(""); !ok || v != 3 {
		t.Errorf("Get(\"\") = (%d, %v), want (3, true)", v, ok)
	}
}

func TestCount(t *testing.T) {
	m := NewWithShards[string, int](4)

	set(m, "key1", 1)
	set(m, "key2", 2)
	set(m, "key3", 3)
	if m.Count() != 3 {
		t.Errorf("Count() = %d, want 3", m.Count())
	}

	m.Compute("key2", func(int, bool) (int, Op) { return 0, OpDelete })
	if m.Count() != 2 {
		t.Errorf("Count() after delete = %d, want 2", m.Count())
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := NewWithShards[string, int](DefaultShardCount)
	var wg sync.WaitGroup
	numGoroutines := 50
	numOps := 500

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				key := strconv.Itoa(base*numOps + j)
				set(m, key, j)
				m.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if m.Count() != numGoroutines*numOps {
		t.Errorf("Count() = %d, want %d", m.Count(), numGoroutines*numOps)
	}
}

func TestStats(t *testing.T) {
	m := NewWithShards[string, int](4)
	for i := 0; i < 100; i++ {
		set(m, strconv.Itoa(i), i)
	}

	stats := m.Stats()
	if len(stats) != 4 {
		t.Errorf("Stats() length = %d, want 4", len(stats))
	}

	total := 0
	for i, s := range stats {
		if s.Index != i {
			t.Errorf("stats[%d].Index = %d", i, s.Index)
		}
		total += s.Count
	}
	if total != 100 {
		t.Errorf("Total count from stats = %d, want 100", total)
	}
}
