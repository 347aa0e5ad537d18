// Package slug generates URL-safe public identifiers for family pages.
package slug

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxLength = 64
	fallback  = "family"
)

// Make lowercases the seed and keeps letters and digits; whitespace and
// "-", "_", "." turn into a single dash, everything else is dropped.
// An empty result falls back to "family" so a slug is always usable.
func Make(text string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			b.WriteByte('-')
		}
	}

	out := b.String()

	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}

	out = strings.Trim(out, "-")

	if runes := []rune(out); len(runes) > maxLength {
		out = string(runes[:maxLength])
	}

	if out == "" {
		return fallback
	}

	return out
}

// Unique probes exists with Make(base), then base-2, base-3, ... until a
// free slug is found. The caller owns the uniqueness registry; for any
// finite registry the increasing suffix guarantees termination.
func Unique(base string, exists func(string) bool) string {
	base = Make(base)
	candidate := base

	for i := 2; exists(candidate); i++ {
		candidate = fmt.Sprintf("%s-%d", base, i)
	}

	return candidate
}
