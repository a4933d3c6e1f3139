package ocr

import "strings"

const (
	// PlaceholderArabicIndic expands to U+0660..U+0669.
	PlaceholderArabicIndic = "{ARABIC_INDIC}"
	// PlaceholderEasternArabicIndic expands to U+06F0..U+06F9.
	PlaceholderEasternArabicIndic = "{EASTERN_ARABIC_INDIC}"
)

func runeRange(lo, hi rune) string {
	var b strings.Builder
	for r := lo; r <= hi; r++ {
		b.WriteRune(r)
	}
	return b.String()
}

var whitelistReplacer = strings.NewReplacer(
	PlaceholderArabicIndic, runeRange(0x0660, 0x0669),
	PlaceholderEasternArabicIndic, runeRange(0x06F0, 0x06F9),
)

// ExpandWhitelist replaces digit-script placeholders with their characters.
func ExpandWhitelist(s string) string {
	if s == "" {
		return s
	}
	return whitelistReplacer.Replace(s)
}
