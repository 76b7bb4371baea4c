package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString trims input, collapses internal whitespace runs and caps it
// at maxLen runes so multi-byte names are never cut mid-character.
func SanitizeString(input string, maxLen int) string {
	collapsed := strings.Join(strings.FieldsFunc(input, unicode.IsSpace), " ")
	if maxLen <= 0 || utf8.RuneCountInString(collapsed) <= maxLen {
		return collapsed
	}
	runes := []rune(collapsed)
	return strings.TrimSpace(string(runes[:maxLen]))
}
