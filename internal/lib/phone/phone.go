// Package phone normalizes customer phone numbers. The normalized digit
// string is the durable customer identity across orders, negotiations and
// chat sessions.
package phone

import "strings"

// Normalize strips every non-digit character.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether the number has at least 6 digits.
func Valid(raw string) bool {
	return len(Normalize(raw)) >= 6
}

// Equal compares two numbers after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
