package normalisers

import (
	"strings"
	"unicode"
)

const swedishPrefix = "+46"

// CanonicalMobile returns the +46 form of a Swedish mobile number, or ""
// when the input is not a mobile number.
//
// Non-digits are dropped, then leading "0" and "46" are stripped until none
// remain. What is left must start with 7.
func CanonicalMobile(phone string) string {
	digits := Digits(phone)
	for {
		switch {
		case strings.HasPrefix(digits, "0"):
			digits = digits[1:]
		case strings.HasPrefix(digits, "46"):
			digits = digits[2:]
		default:
			if strings.HasPrefix(digits, "7") {
				return swedishPrefix + digits
			}
			return ""
		}
	}
}

// FirstMobile tests phones in the given index order and returns the first
// canonical mobile number found.
func FirstMobile(phones []string, order []int) string {
	for _, i := range order {
		if i < 0 || i >= len(phones) || strings.TrimSpace(phones[i]) == "" {
			continue
		}
		if m := CanonicalMobile(phones[i]); m != "" {
			return m
		}
	}
	return ""
}

// MatchKey reduces a phone number to the form used for lookups: digits only,
// with one leading "46" or "0" removed.
func MatchKey(phone string) string {
	digits := Digits(phone)
	switch {
	case strings.HasPrefix(digits, "46"):
		return digits[2:]
	case strings.HasPrefix(digits, "0"):
		return digits[1:]
	default:
		return digits
	}
}

// Digits returns the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
