package translation

import (
	"fmt"
	"strings"

	"lyricsync/internal/language"
)

const jsonContract = `Respond with JSON only, shaped as {"lines": ["...", "..."]}. ` +
	`The array MUST contain exactly one string per input line, in the same order. ` +
	`Use an empty string for an empty input line. Do not add commentary.`

func systemPrompt(stage Stage) string {
	switch stage {
	case StageReview:
		return "You are a precise, line-by-line song translation reviewer. " + jsonContract
	default:
		return "You are a precise, line-by-line song lyric translator. " + jsonContract
	}
}

func translatePrompt(opts Options, lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following %s song lyrics into %s.\n",
		language.DisplayName(opts.SourceLanguage), language.DisplayName(opts.TargetLanguage))
	fmt.Fprintf(&b, "The input has %d lines. Each output line MUST correspond to the same input line.\n", len(lines))
	b.WriteString("Preserve empty lines as empty strings.\n\n")
	b.WriteString("LYRICS:\n---\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n---")
	return b.String()
}

// reviewPrompt pairs every original line with its first-pass translation, tab separated.
func reviewPrompt(opts Options, lines, translated []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review the proposed %s translation of these %s lyrics and provide a more natural, improved version.\n",
		language.DisplayName(opts.TargetLanguage), language.DisplayName(opts.SourceLanguage))
	fmt.Fprintf(&b, "Each row is ORIGINAL<TAB>TRANSLATION. Return exactly %d improved translation lines.\n\n", len(lines))
	b.WriteString("LYRICS TO REVIEW:\n---\n")
	b.WriteString(InterleaveForReview(lines, translated))
	b.WriteString("\n---")
	return b.String()
}

// InterleaveForReview renders original and translated lines as tab-separated rows.
// The shorter side is padded with empty strings.
func InterleaveForReview(original, translated []string) string {
	n := max(len(original), len(translated))
	rows := make([]string, n)
	for i := range n {
		var o, t string
		if i < len(original) {
			o = strings.TrimSpace(original[i])
		}
		if i < len(translated) {
			t = strings.TrimSpace(translated[i])
		}
		rows[i] = o + "\t" + t
	}
	return strings.Join(rows, "\n")
}
