package normalisers

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// SplitName splits a register name of the form "Lastname, Firstname".
//
// The comma must be followed by exactly one space and the first name must be
// a single word. Any other shape reports ok == false. Both parts are title
// cased word by word.
func SplitName(name string) (first, last string, ok bool) {
	s := strings.TrimSpace(name)
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return "", "", false
	}

	rest := s[comma+1:]
	if !strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "  ") {
		return "", "", false
	}

	first = rest[1:]
	last = strings.TrimSpace(s[:comma])
	if first == "" || last == "" || strings.ContainsAny(first, " \t") {
		return "", "", false
	}

	return TitleCase(first), TitleCase(last), true
}

// TitleCase upper-cases the first letter of every space separated word and
// lower-cases the rest. The result is NFC composed.
func TitleCase(s string) string {
	words := strings.Split(norm.NFC.String(s), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
