package rewrite

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ConformCase gives replacement the capitalization pattern of original:
// all lowercase, all uppercase, or a leading capital with the rest lowercase.
// Any other pattern yields lowercase.
//
// Casers carry state, so each call builds its own.
func ConformCase(original, replacement string) string {
	lower := cases.Lower(language.Und)
	lowered := lower.String(replacement)

	if original == lower.String(original) {
		return lowered
	}

	upper := cases.Upper(language.Und)
	if original == upper.String(original) {
		return upper.String(replacement)
	}

	first, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(first) {
		r, size := utf8.DecodeRuneInString(lowered)
		if size == 0 {
			return lowered
		}
		return string(unicode.ToUpper(r)) + lowered[size:]
	}

	return lowered
}
