package inventory

import "strings"

// NormalizeMAC strips every non-hex character and lower-cases the rest, so
// 00:50:56:0A:0B:0C, 00-50-56-0a-0b-0c and 0050560A0B0C compare equal.
func NormalizeMAC(mac string) string {
	var b strings.Builder
	b.Grow(len(mac))
	for _, r := range mac {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
			b.WriteRune(r)
		case r >= 'A' && r <= 'F':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// MACEqual reports whether two hardware addresses normalize to the same value.
func MACEqual(a, b string) bool {
	return NormalizeMAC(a) == NormalizeMAC(b)
}
