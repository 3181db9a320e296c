package normalisers

import (
	"strings"
	"unicode"
)

// SplitPostal splits a joined "zip city" string such as "945 33 ROSVIK".
//
// Everything before the first letter is the zip code with spaces removed;
// the rest, trimmed, is the city. Without any letter the whole string is the
// zip code and city is empty.
func SplitPostal(postal string) (zip, city string) {
	s := strings.TrimSpace(postal)
	if s == "" {
		return "", ""
	}

	idx := strings.IndexFunc(s, unicode.IsLetter)
	if idx < 0 {
		return stripSpaces(s), ""
	}
	return stripSpaces(s[:idx]), strings.TrimSpace(s[idx:])
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
