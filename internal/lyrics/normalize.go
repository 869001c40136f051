package lyrics

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize reduces text to the form used for matching: NFKC composed,
// case folded, and stripped of every rune that is not a letter or number.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	folded := cases.Fold().String(norm.NFKC.String(text))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SplitTranscript splits raw transcript text into lines. Surrounding
// whitespace of the whole text is trimmed; interior blank lines are kept.
func SplitTranscript(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// JoinTranscript is the inverse of SplitTranscript for already split lines.
func JoinTranscript(lines []string) string {
	return strings.Join(lines, "\n")
}
