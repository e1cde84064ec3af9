package domain

import (
	"math"
	"strconv"
	"testing"
)

func TestParseInteger(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"-1", -1, true},
		{"9223372036854775807", math.MaxInt64, true},
		{"-9223372036854775808", math.MinInt64, true},

		{"", 0, false},
		{"-", 0, false},
		{"+1", 0, false},
		{"-0", 0, false},
		{"007", 0, false},
		{" 1", 0, false},
		{"1 ", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
		{"9223372036854775808", 0, false},
		{"-9223372036854775809", 0, false},
		{"123456789012345678901", 0, false},
	}

	for _, tt := range tests {
		t.Run(strconv.Quote(tt.in), func(t *testing.T) {
			got, ok := ParseInteger([]byte(tt.in))
			if ok != tt.ok {
				t.Fatalf("ParseInteger(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseInteger(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatInteger_RoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 43, math.MaxInt64, math.MinInt64} {
		got, ok := ParseInteger(FormatInteger(n))
		if !ok || got != n {
			t.Errorf("round trip of %d gave %d, %v", n, got, ok)
		}
	}
}
