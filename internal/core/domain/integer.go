package domain

import "strconv"

// MaxIntegerLen is the longest textual form of an int64 ("-9223372036854775808").
const MaxIntegerLen = 20

// ParseInteger parses b as a canonical base-10 int64.
//
// Accepted: an optional '-' followed by digits with no leading zeros, or "0".
// Rejected: empty input, '+', whitespace, "-0", leading zeros and out-of-range values.
func ParseInteger(b []byte) (int64, bool) {
	if len(b) == 0 || len(b) > MaxIntegerLen {
		return 0, false
	}
	if len(b) == 1 && b[0] == '0' {
		return 0, true
	}

	digits := b
	if digits[0] == '-' {
		digits = digits[1:]
	}
	if len(digits) == 0 || digits[0] < '1' || digits[0] > '9' {
		return 0, false
	}
	for _, c := range digits[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
	}

	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatInteger renders n in canonical base-10 form.
func FormatInteger(n int64) []byte {
	return strconv.AppendInt(nil, n, 10)
}
