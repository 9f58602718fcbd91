package transcript

import (
	"strings"
	"unicode"
)

// Normalize lowercases text, strips punctuation and apostrophes, and collapses
// whitespace so echo comparisons are insensitive to recognizer formatting.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
