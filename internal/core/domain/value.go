package domain

import "time"

// ValueKind tags the payload stored under a key.
type ValueKind uint8

const (
	// ValueString is a binary-safe byte string.
	ValueString ValueKind = iota
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a tagged payload. Data is never modified after the value is
// stored, so readers may use it without holding the shard lock.
type Value struct {
	Kind ValueKind
	Data []byte
}

// StringValue returns a string value holding a private copy of b.
func StringValue(b []byte) Value {
	return Value{Kind: ValueString, Data: CloneBytes(b)}
}

// Len returns the payload length in bytes.
func (v Value) Len() int {
	return len(v.Data)
}

// Entry is a value plus an optional absolute expiration instant.
// A zero ExpiresAt means the entry never expires.
type Entry struct {
	Value     Value
	ExpiresAt time.Time
}

// HasExpiration reports whether the entry carries a deadline.
func (e *Entry) HasExpiration() bool {
	return !e.ExpiresAt.IsZero()
}

// IsExpired reports whether the entry is logically absent at now.
// An entry whose deadline equals now is expired.
func (e *Entry) IsExpired(now time.Time) bool {
	return e.HasExpiration() && !e.ExpiresAt.After(now)
}

// Remaining returns the time left before expiry, or zero when expired.
// Callers must check HasExpiration first.
func (e *Entry) Remaining(now time.Time) time.Duration {
	if d := e.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// CloneBytes copies b. The result is never nil so that an empty
// payload stays distinguishable from an absent one.
func CloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
