package domain

import (
	"strings"
	"unicode/utf8"
)

// regionalIndicatorA is the code point of REGIONAL INDICATOR SYMBOL LETTER A.
const regionalIndicatorA = 0x1F1E6

// SplitCategoryName splits a category name into its display flag and label.
// The flag is the first space-separated token passed through FlagEmoji.
func SplitCategoryName(name string) (flag, label string) {
	token, rest, _ := strings.Cut(name, " ")
	return FlagEmoji(token), rest
}

// SplitItemName splits an item name the way search cards display it: when the
// first token is a single character (a separator such as "|"), the flag is the
// second token and the label starts at the third.
func SplitItemName(name string) (flag, label string) {
	tokens := strings.Split(name, " ")
	if utf8.RuneCountInString(tokens[0]) >= 2 {
		return FlagEmoji(tokens[0]), strings.Join(tokens[1:], " ")
	}
	if len(tokens) < 2 {
		return "", ""
	}
	if len(tokens) == 2 {
		return FlagEmoji(tokens[1]), ""
	}
	return FlagEmoji(tokens[1]), strings.Join(tokens[2:], " ")
}

// FlagEmoji converts a two-letter country code ("US", "fr", "DE|") into the
// matching flag emoji. "UK" maps to the GB flag. Any other token is returned
// unchanged.
func FlagEmoji(code string) string {
	trimmed := strings.TrimRight(code, "|:")
	if len(trimmed) != 2 {
		return code
	}
	upper := strings.ToUpper(trimmed)
	if upper == "UK" {
		upper = "GB"
	}
	var b strings.Builder
	for _, r := range upper {
		if r < 'A' || r > 'Z' {
			return code
		}
		b.WriteRune(regionalIndicatorA + r - 'A')
	}
	return b.String()
}
