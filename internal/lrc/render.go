package lrc

import (
	"fmt"
	"math"
	"strings"

	"lyricsync/internal/lyrics"
)

// ToolName identifies the generator in the [tool:] header.
const ToolName = "lyricsync"

// Options controls rendering.
type Options struct {
	Centiseconds lyrics.CentisecondPolicy
	// Version is appended to the tool header when set.
	Version string
}

// Render produces LRC text for lines. Rows with blank text are omitted from
// the body. The translation column prefers the reviewed translation.
func Render(meta lyrics.Metadata, lines []lyrics.MergedLine, opts Options) (string, error) {
	var b strings.Builder
	writeHeader(&b, "ar", meta.Artist)
	writeHeader(&b, "al", meta.Album)
	writeHeader(&b, "ti", meta.Title)
	if meta.Duration > 0 && !math.IsInf(meta.Duration, 0) {
		total := int(math.Floor(meta.Duration))
		writeHeader(&b, "length", fmt.Sprintf("%02d:%02d", total/60, total%60))
	}
	tool := ToolName
	if v := strings.TrimSpace(opts.Version); v != "" {
		tool += " " + v
	}
	writeHeader(&b, "tool", tool)

	for i, line := range lines {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		stamp, err := lyrics.Stamp(line.Minutes, line.Seconds, line.Milliseconds, opts.Centiseconds)
		if err != nil {
			return "", fmt.Errorf("lrc: line %d: %w", i+1, err)
		}
		fmt.Fprintf(&b, "[%s]%s\t%s\t%s\n", stamp, text,
			strings.TrimSpace(line.Romaji), strings.TrimSpace(line.DisplayTranslation()))
	}
	return b.String(), nil
}

func writeHeader(b *strings.Builder, tag, value string) {
	value = strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ", "]", ")").Replace(value))
	if value == "" {
		return
	}
	fmt.Fprintf(b, "[%s:%s]\n", tag, value)
}
