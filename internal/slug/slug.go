// Package slug turns note titles into URL-safe slugs.
package slug

import (
	"strconv"
	"strings"
)

const (
	// MaxLen caps the base slug length before any uniquifying suffix.
	MaxLen = 50

	// Fallback is used when a title yields no slug-safe characters.
	Fallback = "untitled"
)

// Make converts a title into a lowercase hyphenated slug.
// Characters outside [a-z0-9] and whitespace are dropped (hyphens included),
// whitespace runs collapse into single hyphens, and the result is capped at
// MaxLen characters. Titles with nothing usable become Fallback.
func Make(title string) string {
	lowered := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\v', r == '\f':
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	s := strings.Join(words, "-")

	if len(s) > MaxLen {
		s = strings.TrimRight(s[:MaxLen], "-")
	}
	if s == "" {
		return Fallback
	}
	return s
}

// WithSuffix appends a numeric uniquifying suffix to a base slug.
// WithSuffix(base, 0) returns the base unchanged; higher attempts yield
// base-1, base-2, and so on.
func WithSuffix(base string, attempt int) string {
	if attempt <= 0 {
		return base
	}
	return base + "-" + strconv.Itoa(attempt)
}
