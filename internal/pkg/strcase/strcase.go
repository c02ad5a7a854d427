// Package strcase converts identifiers and display names between cases.
package strcase

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ToLowerSnake converts a string to snake_case (initialism-safe).
//
// userID becomes user_id and HTTPServer becomes http_server.
func ToLowerSnake(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s) + 4)

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune('_')
			}
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// ToSlug folds s to lowercase ASCII words joined by single dashes.
//
// After compatibility decomposition any non-ASCII rune is dropped, so accents
// vanish without splitting a word. Runs of other non-alphanumerics become one
// dash. An input with nothing left yields "org".
func ToSlug(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingDash := false
	for _, r := range norm.NFKD.String(s) {
		if r > unicode.MaxASCII {
			continue
		}

		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash {
				b.WriteByte('-')
				pendingDash = false
			}
			b.WriteRune(r)
			continue
		}

		pendingDash = b.Len() > 0
	}

	if b.Len() == 0 {
		return "org"
	}

	return b.String()
}
