// Package slug derives URL-safe story identifiers from titles.
package slug

import (
	"strings"
	"unicode"
)

// Make normalizes a title into a URL-safe slug: lower-cased, characters
// outside [a-z0-9\s-] stripped (diacritics and punctuation are removed, not
// transliterated), whitespace and hyphen runs collapsed to a single hyphen,
// leading and trailing hyphens trimmed. Make is total and idempotent.
func Make(title string) string {
	lowered := strings.ToLower(title)

	var kept strings.Builder
	kept.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			kept.WriteRune(r)
		case unicode.IsSpace(r):
			kept.WriteByte(' ')
		}
	}

	// Whitespace runs become single hyphens.
	joined := strings.Join(strings.Fields(kept.String()), "-")

	var out strings.Builder
	out.Grow(len(joined))
	prevHyphen := false
	for _, r := range joined {
		if r == '-' {
			if prevHyphen {
				continue
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		out.WriteRune(r)
	}

	return strings.Trim(out.String(), "-")
}
