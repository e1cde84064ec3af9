package domain

import (
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	now := time.Unix(1000, 0)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"no expiration", time.Time{}, false},
		{"future", now.Add(time.Second), false},
		{"exactly now", now, true},
		{"past", now.Add(-time.Millisecond), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Value: StringValue([]byte("v")), ExpiresAt: tt.expiresAt}
			if got := e.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_Remaining(t *testing.T) {
	now := time.Unix(1000, 0)
	e := &Entry{ExpiresAt: now.Add(1500 * time.Millisecond)}
	if got := e.Remaining(now); got != 1500*time.Millisecond {
		t.Errorf("Remaining() = %v", got)
	}
	if got := e.Remaining(now.Add(time.Hour)); got != 0 {
		t.Errorf("Remaining() after deadline = %v, want 0", got)
	}
}

func TestStringValue_Copies(t *testing.T) {
	src := []byte("abc")
	v := StringValue(src)
	src[0] = 'x'
	if string(v.Data) != "abc" {
		t.Errorf("StringValue shares caller memory: %q", v.Data)
	}
}

func TestCloneBytes_EmptyNotNil(t *testing.T) {
	if CloneBytes(nil) == nil {
		t.Error("CloneBytes(nil) must return a non-nil slice")
	}
	if CloneBytes([]byte{}) == nil {
		t.Error("CloneBytes(empty) must return a non-nil slice")
	}
}
