package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases and NFC-normalizes text before comparison.
func Fold(input string) string {
	return norm.NFC.String(strings.ToLower(input))
}

func JoinFields(values ...string) string {
	return strings.TrimSpace(strings.Join(values, " "))
}

// SingleLine replaces control characters (line breaks, tabs) with spaces.
func SingleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// PadRight truncates or space-pads s to exactly width characters. Control
// characters become spaces so the field stays on one line.
func PadRight(s string, width int) string {
	r := []rune(SingleLine(s))
	if len(r) >= width {
		return string(r[:width])
	}
	return string(r) + strings.Repeat(" ", width-len(r))
}

// PadLeftZero left-pads s with zeros to at least width characters.
func PadLeftZero(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat("0", width-n) + s
}
