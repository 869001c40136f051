package pipeline

import (
	"fmt"
	"strings"

	"lyricsync/internal/lyrics"
	"lyricsync/internal/translation"
)

// FlagKind classifies a suspicious merged row.
type FlagKind string

const (
	// FlagBlankShift marks a row where exactly one side is blank.
	FlagBlankShift FlagKind = "blank_shift"
	// FlagTextMismatch marks a row whose alignment text differs from the
	// text the translation claims to translate.
	FlagTextMismatch FlagKind = "text_mismatch"
)

// Flag is a per-row merge observation.
type Flag struct {
	Index    int      `json:"index"`
	Kind     FlagKind `json:"kind"`
	Aligned  string   `json:"aligned"`
	Original string   `json:"original"`
}

// MergeReport collects what Merge noticed without acting on it.
type MergeReport struct {
	Warnings []string `json:"warnings"`
	Flags    []Flag   `json:"flags"`
}

// MergeOptions controls timestamp formatting.
type MergeOptions struct {
	Milliseconds lyrics.MillisecondPolicy
}

// Merge zips aligned lines with translation records by position, up to the
// shorter of the two.
func Merge(aligned []lyrics.LyricLine, records []translation.Record, opts MergeOptions) ([]lyrics.MergedLine, MergeReport) {
	report := MergeReport{Warnings: []string{}, Flags: []Flag{}}
	n := min(len(aligned), len(records))
	if len(aligned) != len(records) {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"alignment produced %d lines but translation produced %d; merged the first %d",
			len(aligned), len(records), n))
	}

	merged := make([]lyrics.MergedLine, 0, n)
	for i := 0; i < n; i++ {
		line := aligned[i]
		record := records[i]
		text := strings.TrimSpace(line.RawText)
		original := strings.TrimSpace(record.Original)

		switch {
		case (text == "") != (original == ""):
			report.Flags = append(report.Flags, Flag{Index: i, Kind: FlagBlankShift, Aligned: text, Original: original})
		case text != original:
			report.Flags = append(report.Flags, Flag{Index: i, Kind: FlagTextMismatch, Aligned: text, Original: original})
		}

		mm, ss, mmm := lyrics.Decompose(line.Start, opts.Milliseconds).Format()
		merged = append(merged, lyrics.MergedLine{
			Text:                text,
			Minutes:             mm,
			Seconds:             ss,
			Milliseconds:        mmm,
			Romaji:              record.Romaji,
			Translation:         record.Translation,
			ImprovedTranslation: record.ImprovedTranslation,
			Start:               line.Start,
			End:                 line.End,
		})
	}
	if len(report.Flags) > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d merged lines flagged for review", len(report.Flags)))
	}
	return merged, report
}
