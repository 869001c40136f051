package lyrics

import "strings"

// Token is one recognized word from the aligner.
type Token struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// LyricLine is the timing assigned to one transcript line.
type LyricLine struct {
	RawText        string  `json:"text"`
	NormalizedText string  `json:"normalized_text,omitempty"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	// Matched reports whether at least one token was assigned to the line.
	Matched bool `json:"matched"`
	// Complete reports whether the assigned tokens spell the whole line.
	Complete   bool `json:"complete"`
	TokenCount int  `json:"token_count"`
	// TokenIndex is the cursor position when the line was examined.
	TokenIndex int `json:"-"`
}

// Blank reports whether the line carries no text.
func (l LyricLine) Blank() bool {
	return strings.TrimSpace(l.RawText) == ""
}

// MatchCursor is the state threaded from one line to the next.
type MatchCursor struct {
	TokenIndex  int
	PreviousEnd float64
}

// Reconstructor assigns tokens to lines in order. It is not safe for
// concurrent use.
type Reconstructor struct {
	tokens     []Token
	normalized []string
	cursor     MatchCursor
}

// NewReconstructor prepares a reconstruction pass over tokens.
func NewReconstructor(tokens []Token) *Reconstructor {
	normalized := make([]string, len(tokens))
	for i, tok := range tokens {
		normalized[i] = Normalize(tok.Text)
	}
	return &Reconstructor{tokens: tokens, normalized: normalized}
}

// Cursor returns the current cursor state.
func (r *Reconstructor) Cursor() MatchCursor {
	return r.cursor
}

// Remaining returns the number of tokens not yet assigned to a line.
func (r *Reconstructor) Remaining() int {
	return len(r.tokens) - r.cursor.TokenIndex
}

// Next consumes the tokens belonging to raw and returns its timing.
//
// Tokens are accepted while the concatenation of their normalized text stays
// a prefix of the normalized line. The first token that breaks the prefix is
// left in place for the following line. A line with no accepted tokens, and
// any blank line, gets a zero-length span at the previous line's end.
func (r *Reconstructor) Next(raw string) LyricLine {
	line := LyricLine{
		RawText:    raw,
		Start:      r.cursor.PreviousEnd,
		End:        r.cursor.PreviousEnd,
		TokenIndex: r.cursor.TokenIndex,
	}
	if strings.TrimSpace(raw) == "" {
		return line
	}

	target := Normalize(raw)
	line.NormalizedText = target

	idx := r.cursor.TokenIndex
	first := -1
	accumulated := ""
	for idx < len(r.tokens) {
		candidate := accumulated + r.normalized[idx]
		if !strings.HasPrefix(target, candidate) {
			break
		}
		if first < 0 {
			first = idx
		}
		accumulated = candidate
		idx++
		if accumulated == target {
			break
		}
	}

	if first < 0 {
		return line
	}

	line.Matched = true
	line.Complete = accumulated == target
	line.TokenCount = idx - first
	line.Start = r.tokens[first].Start
	line.End = r.tokens[idx-1].End
	r.cursor.TokenIndex = idx
	r.cursor.PreviousEnd = line.End
	return line
}

// Reconstruct returns one LyricLine per entry of lines, in order.
func Reconstruct(lines []string, tokens []Token) []LyricLine {
	r := NewReconstructor(tokens)
	out := make([]LyricLine, 0, len(lines))
	for _, raw := range lines {
		out = append(out, r.Next(raw))
	}
	return out
}

// Stats summarizes a reconstruction result.
type Stats struct {
	Lines     int `json:"lines"`
	Blank     int `json:"blank"`
	Matched   int `json:"matched"`
	Complete  int `json:"complete"`
	Unmatched int `json:"unmatched"`
}

// Summarize counts line outcomes.
func Summarize(lines []LyricLine) Stats {
	stats := Stats{Lines: len(lines)}
	for _, line := range lines {
		switch {
		case line.Blank():
			stats.Blank++
		case !line.Matched:
			stats.Unmatched++
		default:
			stats.Matched++
			if line.Complete {
				stats.Complete++
			}
		}
	}
	return stats
}
