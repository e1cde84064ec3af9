package memory

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/yndnr/rosso/internal/core/domain"
	"github.com/yndnr/rosso/pkg/cmap"
)

// TTL sentinels reported for keys without a remaining lifetime.
const (
	TTLMissing      int64 = -2
	TTLNoExpiration int64 = -1
)

// Condition restricts when SetWithOptions writes.
type Condition int

const (
	// Always writes unconditionally.
	Always Condition = iota
	// IfNotExists writes only when the key is absent (NX).
	IfNotExists
	// IfExists writes only when the key is present (XX).
	IfExists
)

// SetOptions controls SetWithOptions.
//
// At most one of TTL, ExpiresAt and KeepTTL should be set. With none
// of them the written entry never expires.
type SetOptions struct {
	TTL       time.Duration
	ExpiresAt time.Time
	KeepTTL   bool
	Condition Condition
	ReturnOld bool
}

// SetResult reports what SetWithOptions did.
type SetResult struct {
	// Applied is false when the condition was not met.
	Applied bool
	// HadOld reports whether a live value existed before the call.
	HadOld bool
	// Old is a copy of the previous value, filled only with ReturnOld.
	Old []byte
}

// Stats is a snapshot of keyspace counters.
type Stats struct {
	Keys         int
	Shards       int
	ShardKeys    []int // entry count per shard, indexed by shard
	Hits         uint64
	Misses       uint64
	ExpiredLazy  uint64
	ExpiredSwept uint64
}

// Keyspace is the shared key-value store.
type Keyspace struct {
	entries *cmap.Map[string, *domain.Entry]
	clock   Clock
	shards  int

	hits         atomic.Uint64
	misses       atomic.Uint64
	expiredLazy  atomic.Uint64
	expiredSwept atomic.Uint64
}

// Option configures the Keyspace.
type Option func(*Keyspace)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(ks *Keyspace) {
		ks.clock = c
	}
}

// WithShards sets the shard count. Must be a power of 2.
func WithShards(n int) Option {
	return func(ks *Keyspace) {
		ks.shards = n
	}
}

// New creates an empty keyspace.
func New(opts ...Option) *Keyspace {
	ks := &Keyspace{
		clock:  SystemClock{},
		shards: cmap.DefaultShardCount,
	}

	for _, opt := range opts {
		opt(ks)
	}

	ks.entries = cmap.NewWithShards[string, *domain.Entry](ks.shards)
	return ks
}

// lookup applies lazy expiration to a slot read under the shard lock.
// It returns the live entry (nil when absent) and the Op that drops an
// expired one. Every keyed write goes through here.
func (ks *Keyspace) lookup(e *domain.Entry, exists bool, now time.Time) (*domain.Entry, cmap.Op) {
	if !exists {
		return nil, cmap.OpKeep
	}
	if e.IsExpired(now) {
		ks.expiredLazy.Add(1)
		return nil, cmap.OpDelete
	}
	return e, cmap.OpKeep
}

// load returns the live entry at key under the shard read lock. Stored
// entries are never modified in place, so the result stays valid after
// the lock is released. An expired entry is dropped under the write lock,
// unless a writer replaced it in between.
func (ks *Keyspace) load(key string, now time.Time) *domain.Entry {
	e, ok := ks.entries.Get(key)
	if !ok {
		return nil
	}
	if !e.IsExpired(now) {
		return e
	}

	ks.entries.Compute(key, func(cur *domain.Entry, exists bool) (*domain.Entry, cmap.Op) {
		if !exists || cur != e {
			return cur, cmap.OpKeep
		}
		ks.expiredLazy.Add(1)
		return nil, cmap.OpDelete
	})
	return nil
}

func checkString(e *domain.Entry) error {
	if e.Value.Kind != domain.ValueString {
		return domain.ErrWrongType
	}
	return nil
}

// Get returns a copy of the value stored at key.
func (ks *Keyspace) Get(key []byte) ([]byte, bool, error) {
	e := ks.load(string(key), ks.clock.Now())
	if e == nil {
		ks.misses.Add(1)
		return nil, false, nil
	}
	if err := checkString(e); err != nil {
		return nil, false, err
	}
	ks.hits.Add(1)
	return domain.CloneBytes(e.Value.Data), true, nil
}

// Set stores payload at key, replacing any previous value.
// ttl > 0 sets a relative expiration, otherwise the key never expires.
func (ks *Keyspace) Set(key, payload []byte, ttl time.Duration) {
	// Unconditional SET without GET cannot fail.
	_, _ = ks.SetWithOptions(key, payload, SetOptions{TTL: ttl})
}

// SetWithOptions stores payload at key subject to opts.
func (ks *Keyspace) SetWithOptions(key, payload []byte, opts SetOptions) (SetResult, error) {
	var (
		res SetResult
		err error
	)

	ks.entries.Compute(string(key), func(e *domain.Entry, exists bool) (*domain.Entry, cmap.Op) {
		now := ks.clock.Now()
		cur, op := ks.lookup(e, exists, now)

		if cur != nil {
			if opts.ReturnOld {
				if err = checkString(cur); err != nil {
					return cur, op
				}
				res.Old = domain.CloneBytes(cur.Value.Data)
			}
			res.HadOld = true
		}

		switch {
		case opts.Condition == IfNotExists && cur != nil,
			opts.Condition == IfExists && cur == nil:
			return cur, op
		}

		var expiresAt time.Time
		switch {
		case opts.KeepTTL:
			if cur != nil {
				expiresAt = cur.ExpiresAt
			}
		case opts.TTL > 0:
			expiresAt = now.Add(opts.TTL)
		case !opts.ExpiresAt.IsZero():
			expiresAt = opts.ExpiresAt
		}

		res.Applied = true
		next := &domain.Entry{Value: domain.StringValue(payload), ExpiresAt: expiresAt}
		if next.IsExpired(now) {
			// Absolute deadline already passed: the write lands and expires at once.
			return nil, cmap.OpDelete
		}
		return next, cmap.OpStore
	})

	return res, err
}

// Append appends suffix to the value at key and returns the new length.
// An absent key is created without expiration; an existing one keeps its deadline.
func (ks *Keyspace) Append(key, suffix []byte) (int64, error) {
	var (
		n   int64
		err error
	)

	ks.entries.Compute(string(key), func(e *domain.Entry, exists bool) (*domain.Entry, cmap.Op) {
		cur, op := ks.lookup(e, exists, ks.clock.Now())
		if cur == nil {
			n = int64(len(suffix))
			return &domain.Entry{Value: domain.StringValue(suffix)}, cmap.OpStore
		}
		if err = checkString(cur); err != nil {
			return cur, op
		}

		data := make([]byte, 0, len(cur.Value.Data)+len(suffix))
		data = append(data, cur.Value.Data...)
		data = append(data, suffix...)
		n = int64(len(data))
		return &domain.Entry{
			Value:     domain.Value{Kind: domain.ValueString, Data: data},
			ExpiresAt: cur.ExpiresAt,
		}, cmap.OpStore
	})

	return n, err
}

// Incr increments the integer stored at key by one and returns the result.
// An absent key counts as 0. The deadline of an existing key is kept.
// On error the stored value is left untouched.
func (ks *Keyspace) Incr(key []byte) (int64, error) {
	return ks.IncrBy(key, 1)
}

// IncrBy adds delta to the integer stored at key and returns the result.
func (ks *Keyspace) IncrBy(key []byte, delta int64) (int64, error) {
	var (
		n   int64
		err error
	)

	ks.entries.Compute(string(key), func(e *domain.Entry, exists bool) (*domain.Entry, cmap.Op) {
		cur, op := ks.lookup(e, exists, ks.clock.Now())

		var (
			base      int64
			expiresAt time.Time
		)
		if cur != nil {
			if err = checkString(cur); err != nil {
				return cur, op
			}
			v, ok := domain.ParseInteger(cur.Value.Data)
			if !ok {
				err = domain.ErrNotAnInteger
				return cur, op
			}
			base, expiresAt = v, cur.ExpiresAt
		}

		if (delta > 0 && base > math.MaxInt64-delta) || (delta < 0 && base < math.MinInt64-delta) {
			err = domain.ErrOverflow
			return cur, op
		}

		n = base + delta
		return &domain.Entry{
			Value:     domain.Value{Kind: domain.ValueString, Data: domain.FormatInteger(n)},
			ExpiresAt: expiresAt,
		}, cmap.OpStore
	})

	return n, err
}

// Strlen returns the length of the value at key, or 0 when absent.
func (ks *Keyspace) Strlen(key []byte) (int64, error) {
	e := ks.load(string(key), ks.clock.Now())
	if e == nil {
		return 0, nil
	}
	if err := checkString(e); err != nil {
		return 0, err
	}
	return int64(e.Value.Len()), nil
}

// remaining returns the lifetime left for key, with TTLMissing or
// TTLNoExpiration in state when there is none.
func (ks *Keyspace) remaining(key []byte) (d time.Duration, state int64) {
	now := ks.clock.Now()
	e := ks.load(string(key), now)
	switch {
	case e == nil:
		return 0, TTLMissing
	case !e.HasExpiration():
		return 0, TTLNoExpiration
	default:
		return e.Remaining(now), 0
	}
}

// TTL returns the remaining lifetime of key in seconds, rounded half-up
// from milliseconds. It returns TTLMissing or TTLNoExpiration otherwise.
func (ks *Keyspace) TTL(key []byte) int64 {
	d, state := ks.remaining(key)
	if state != 0 {
		return state
	}
	return (d.Milliseconds() + 500) / 1000
}

// PTTL is TTL in milliseconds.
func (ks *Keyspace) PTTL(key []byte) int64 {
	d, state := ks.remaining(key)
	if state != 0 {
		return state
	}
	return d.Milliseconds()
}

// Del removes the given keys and returns how many were live.
func (ks *Keyspace) Del(keys ...[]byte) int64 {
	var removed int64
	for _, key := range keys {
		ks.entries.Compute(string(key), func(e *domain.Entry, exists bool) (*domain.Entry, cmap.Op) {
			cur, op := ks.lookup(e, exists, ks.clock.Now())
			if cur == nil {
				return nil, op
			}
			removed++
			return nil, cmap.OpDelete
		})
	}
	return removed
}

// Exists counts how many of the given keys are live. Repeated keys count repeatedly.
func (ks *Keyspace) Exists(keys ...[]byte) int64 {
	var found int64
	for _, key := range keys {
		if ks.load(string(key), ks.clock.Now()) != nil {
			found++
		}
	}
	return found
}

// Len returns the number of stored entries, including expired ones not yet reclaimed.
func (ks *Keyspace) Len() int {
	return ks.entries.Count()
}

// DeleteExpired removes every expired entry and returns the number removed.
func (ks *Keyspace) DeleteExpired() int {
	now := ks.clock.Now()
	n := ks.entries.DeleteIf(func(_ string, e *domain.Entry) bool {
		return e.IsExpired(now)
	})
	ks.expiredSwept.Add(uint64(n))
	return n
}

// Stats returns a snapshot of the keyspace counters.
func (ks *Keyspace) Stats() Stats {
	shards := ks.entries.Stats()
	perShard := make([]int, len(shards))
	keys := 0
	for _, st := range shards {
		perShard[st.Index] = st.Count
		keys += st.Count
	}

	return Stats{
		Keys:         keys,
		Shards:       len(shards),
		ShardKeys:    perShard,
		Hits:         ks.hits.Load(),
		Misses:       ks.misses.Load(),
		ExpiredLazy:  ks.expiredLazy.Load(),
		ExpiredSwept: ks.expiredSwept.Load(),
	}
}
