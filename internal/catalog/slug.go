package catalog

import (
	"strings"
	"unicode"
)

// Slug derives a movie identifier from a title.
//
// The title is lowercased, everything except ASCII letters, digits and
// whitespace is dropped, and each whitespace run becomes a single hyphen.
// Surrounding whitespace therefore leaves a hyphen at that end, so ids typed
// into existing spreadsheets keep resolving. Slug is deterministic: the same
// title always yields the same identifier.
func Slug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pendingSep := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsSpace(r) || r == '\uFEFF':
			pendingSep = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		}
	}
	if pendingSep {
		b.WriteByte('-')
	}

	return b.String()
}
