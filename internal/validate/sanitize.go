package validate

import (
	"strings"
	"unicode"
)

// SanitizeText cleans a DP input string: surrounding whitespace and
// control characters are dropped and letters are upper-cased.
func SanitizeText(s string) string {
	s = strings.TrimSpace(s)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}

// SanitizeID normalizes a procedure or preset identifier.
func SanitizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))

	// Keep only alphanumeric and dashes
	var sb strings.Builder
	for _, r := range id {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-':
			sb.WriteRune(r)
		case r == '_' || r == ' ':
			sb.WriteRune('-')
		}
	}
	return sb.String()
}

// SanitizeNodeID normalizes a graph node reference such as " a " to "A".
func SanitizeNodeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
