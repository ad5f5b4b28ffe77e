package matching

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes free text for comparison: lowercase, trim, drop
// every character that is not a word character or whitespace, and collapse
// whitespace runs to a single space. Idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	lowered := strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
