package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims whitespace and caps the result at maxLen runes.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		return string([]rune(trimmed)[:maxLen])
	}
	return trimmed
}

// OptionalString returns nil for blank input.
func OptionalString(input string, maxLen int) *string {
	v := SanitizeString(input, maxLen)
	if v == "" {
		return nil
	}
	return &v
}
