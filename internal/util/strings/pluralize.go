package strings

import "strings"

// irregular plurals we actually expect to see in resource names
var irregulars = map[string]string{
	"person": "people",
	"child":  "children",
	"datum":  "data",
}

// Pluralize converts a singular resource name to its plural form
// (user -> users, company -> companies, address -> addresses).
// It is intentionally small: resource names, not arbitrary English.
func Pluralize(s string) string {
	if s == "" {
		return s
	}

	if plural, ok := irregulars[strings.ToLower(s)]; ok {
		return plural
	}

	switch {
	case strings.HasSuffix(s, "y") && !hasVowelBefore(s, len(s)-1):
		return s[:len(s)-1] + "ies"
	case strings.HasSuffix(s, "s"),
		strings.HasSuffix(s, "x"),
		strings.HasSuffix(s, "z"),
		strings.HasSuffix(s, "ch"),
		strings.HasSuffix(s, "sh"):
		return s + "es"
	default:
		return s + "s"
	}
}

// hasVowelBefore reports whether the rune before index i is a vowel
func hasVowelBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	return strings.ContainsRune("aeiou", rune(s[i-1]))
}
