package reconcile

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const noRune rune = -1

// run is a maximal span of digits and separators, in byte offsets.
// [digitStart, digitEnd) is the run without its leading and trailing
// separators; it is only meaningful when hasDigit is set.
type run struct {
	start, end           int
	digitStart, digitEnd int
	hasDigit             bool
	before               rune // rune preceding the run, noRune at text start
	after                rune // rune following the run, noRune at text end
}

// gluedToLetter reports whether a letter touches a digit at the edge of the
// run, as in "O12-345" or "A4". A separator between letter and digits
// ("No.123", "ID-4711") keeps the number free.
func (r run) gluedToLetter() bool {
	return (r.digitStart == r.start && unicode.IsLetter(r.before)) ||
		(r.digitEnd == r.end && unicode.IsLetter(r.after))
}

// scanRuns finds the maximal digit-or-separator runs of s in one forward pass.
func scanRuns(s string) []run {
	var (
		runs  []run
		cur   run
		inRun bool
		last  = noRune
	)
	for i, r := range s {
		switch {
		case isDigitOrSeparator(r):
			if !inRun {
				inRun = true
				cur = run{start: i, before: last}
			}
			if IsDigit(r) {
				if !cur.hasDigit {
					cur.hasDigit = true
					cur.digitStart = i
				}
				cur.digitEnd = i + utf8.RuneLen(r)
			}
		case inRun:
			inRun = false
			cur.end, cur.after = i, r
			runs = append(runs, cur)
		}
		last = r
	}
	if inRun {
		cur.end, cur.after = len(s), noRune
		runs = append(runs, cur)
	}
	return runs
}

// DigitGroups returns the digit-or-separator runs of s that contain at least
// one digit, in order of appearance.
func DigitGroups(s string) []string {
	var groups []string
	for _, r := range scanRuns(s) {
		if r.hasDigit {
			groups = append(groups, s[r.start:r.end])
		}
	}
	return groups
}

// ReplaceDigitGroups substitutes the numeric runs of text with groups, matched
// by position. Only the span from the first to the last digit is replaced, so
// separators at the edges of a run and of a group are kept as in text. Runs
// without a digit and runs glued to a letter are left alone and do not consume
// a group. Once groups run out the remaining runs are kept.
func ReplaceDigitGroups(text string, groups []string) string {
	if len(groups) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	pos, next := 0, 0
	for _, r := range scanRuns(text) {
		if !r.hasDigit || r.gluedToLetter() || next >= len(groups) {
			continue
		}
		b.WriteString(text[pos:r.digitStart])
		b.WriteString(strings.TrimFunc(groups[next], IsSeparator))
		next++
		pos = r.digitEnd
	}
	b.WriteString(text[pos:])
	return b.String()
}
