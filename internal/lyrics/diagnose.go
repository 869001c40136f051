package lyrics

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Mismatch describes a non-blank line that was not fully spelled by tokens.
type Mismatch struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Target   string `json:"target"`
	Upcoming string `json:"upcoming"`
	Diff     string `json:"diff"`
	Matched  bool   `json:"matched"`
}

// Diagnose compares every incomplete line with the token text that followed
// the cursor when the line was examined. It does not alter timings.
func Diagnose(lines []LyricLine, tokens []Token) []Mismatch {
	normalized := make([]string, len(tokens))
	for i, tok := range tokens {
		normalized[i] = Normalize(tok.Text)
	}

	dmp := diffmatchpatch.New()
	var out []Mismatch
	for i, line := range lines {
		if line.Blank() || line.Complete {
			continue
		}
		upcoming := window(normalized, line.TokenIndex, utf8.RuneCountInString(line.NormalizedText))
		diffs := dmp.DiffMain(line.NormalizedText, upcoming, false)
		out = append(out, Mismatch{
			Index:    i,
			Text:     line.RawText,
			Target:   line.NormalizedText,
			Upcoming: upcoming,
			Diff:     renderDiff(dmp.DiffCleanupSemantic(diffs)),
			Matched:  line.Matched,
		})
	}
	return out
}

// window concatenates normalized tokens from start until at least runes
// characters are collected.
func window(normalized []string, start, runes int) string {
	var b strings.Builder
	count := 0
	for i := start; i >= 0 && i < len(normalized) && count < runes; i++ {
		b.WriteString(normalized[i])
		count += utf8.RuneCountInString(normalized[i])
	}
	return b.String()
}

func renderDiff(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-")
			b.WriteString(d.Text)
			b.WriteString("-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+")
			b.WriteString(d.Text)
			b.WriteString("+}")
		}
	}
	return b.String()
}
