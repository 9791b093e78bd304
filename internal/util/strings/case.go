// Package strings has the naming conventions shared by the transports:
// resource names become snake_case route segments and table names.
package strings

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts a CamelCase name to snake_case. Acronym runs stay
// together: HTTPRequest becomes http_request, not h_t_t_p_request.
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}
		// A boundary sits before an uppercase rune that follows a lowercase
		// one, or that starts the tail of an acronym run (next is lowercase).
		if i > 0 {
			switch {
			case unicode.IsLower(runes[i-1]):
				b.WriteByte('_')
			case i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
