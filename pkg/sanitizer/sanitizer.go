// Package sanitizer normalizes dialogue input tokens before comparison.
//
// Only command, menu and choice tokens are normalized; free-text answers
// (name, address, liters) are stored verbatim. All functions are idempotent.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses runs of whitespace into a
// single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// FoldToken lowercases and trims an input token for case-insensitive
// comparison against commands and menu choices.
func FoldToken(s string) string {
	return strings.ToLower(TrimAndNormalize(s))
}

// NormalizeWeekday folds a weekday answer and strips the "-feira" suffix,
// so "Segunda-feira", "segunda" and " SEGUNDA " all compare equal.
func NormalizeWeekday(s string) string {
	return strings.TrimSuffix(FoldToken(s), "-feira")
}

// Capitalize uppercases the first rune, for weekday names in replies.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
