// Package reconcile merges the output of a general OCR pass with a pass
// restricted to numerals.
package reconcile

import (
	"fmt"
	"strings"
	"unicode"
)

// Mode selects how the digit pass is merged into the primary text.
type Mode string

const (
	// ModePrefer returns either the primary or the digit text as a whole.
	ModePrefer Mode = "prefer"
	// ModeReplace substitutes digit runs of the primary text positionally.
	ModeReplace Mode = "replace"
)

// ParseMode validates a mode name. The empty string means prefer.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePrefer:
		return ModePrefer, nil
	case ModeReplace:
		return ModeReplace, nil
	default:
		return "", fmt.Errorf("unknown reconcile mode %q (want prefer or replace)", s)
	}
}

// Reconcile decides the final text of a region from the primary pass and the
// digit pass. An empty digit pass always yields primary.
func Reconcile(primary, digits string, mode Mode, minDigitChars int) string {
	digits = strings.TrimSpace(digits)
	if digits == "" {
		return primary
	}
	if mode == ModeReplace {
		return ReplaceDigitGroups(primary, DigitGroups(digits))
	}
	return prefer(primary, digits, minDigitChars)
}

// prefer lets the digit pass win only when it found more numerals than the
// primary pass found of either kind. A tie with the letter count favors the
// digit pass.
func prefer(primary, digits string, minDigitChars int) string {
	n := CountDigits(digits)
	if n < minDigitChars {
		return primary
	}
	if n > CountDigits(primary) && n >= CountLetters(primary) {
		return digits
	}
	return primary
}

// IsDigit reports whether r is an ASCII, Arabic-Indic (U+0660..U+0669) or
// Extended Arabic-Indic (U+06F0..U+06F9) digit.
func IsDigit(r rune) bool {
	return ('0' <= r && r <= '9') ||
		(0x0660 <= r && r <= 0x0669) ||
		(0x06F0 <= r && r <= 0x06F9)
}

// IsSeparator reports whether r may appear inside a number: . , - / :
func IsSeparator(r rune) bool {
	switch r {
	case '.', ',', '-', '/', ':':
		return true
	}
	return false
}

func isDigitOrSeparator(r rune) bool { return IsDigit(r) || IsSeparator(r) }

// CountDigits counts the runes accepted by IsDigit.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if IsDigit(r) {
			n++
		}
	}
	return n
}

// CountLetters counts Unicode letters.
func CountLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
