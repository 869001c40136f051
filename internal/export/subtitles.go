package export

import (
	"io"
	"strings"
	"time"

	"github.com/asticode/go-astisub"

	"lyricsync/internal/lyrics"
)

// fallbackCueLength is used for the last cue when no end time is known.
const fallbackCueLength = 3 * time.Second

func writeSubtitles(w io.Writer, lines []lyrics.MergedLine, format string) error {
	subs := BuildSubtitles(lines)
	if format == FormatVTT {
		return subs.WriteToWebVTT(w)
	}
	return subs.WriteToSRT(w)
}

// BuildSubtitles converts records into cues. Each cue shows the original,
// romanization, and translation on separate lines. Blank records end the
// previous cue but produce none of their own.
func BuildSubtitles(lines []lyrics.MergedLine) *astisub.Subtitles {
	subs := astisub.NewSubtitles()
	starts := make([]time.Duration, len(lines))
	for i, line := range lines {
		starts[i] = lineStart(line)
	}
	for i, line := range lines {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		start := starts[i]
		end := seconds(line.End)
		if end <= start {
			end = start + fallbackCueLength
			if i+1 < len(lines) && starts[i+1] > start {
				end = starts[i+1]
			}
		}
		item := &astisub.Item{StartAt: start, EndAt: end}
		for _, row := range []string{text, strings.TrimSpace(line.Romaji), strings.TrimSpace(line.DisplayTranslation())} {
			if row == "" {
				continue
			}
			item.Lines = append(item.Lines, astisub.Line{Items: []astisub.LineItem{{Text: row}}})
		}
		subs.Items = append(subs.Items, item)
	}
	return subs
}

func lineStart(line lyrics.MergedLine) time.Duration {
	if parts, err := lyrics.ParseTimeParts(line.Minutes, line.Seconds, line.Milliseconds); err == nil {
		return time.Duration(parts.Minutes)*time.Minute + time.Duration(parts.Seconds)*time.Second + time.Duration(parts.Milliseconds)*time.Millisecond
	}
	return seconds(line.Start)
}

func seconds(value float64) time.Duration {
	if value <= 0 {
		return 0
	}
	return time.Duration(value * float64(time.Second)).Round(time.Millisecond)
}
