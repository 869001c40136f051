package lrc

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"lyricsync/internal/lyrics"
)

// Document is a parsed LRC file.
type Document struct {
	Headers map[string]string
	Lines   []Line
}

// Line is one timed row. A row with several stamps yields one Line per stamp.
type Line struct {
	Time        float64 `json:"time"`
	Stamp       string  `json:"stamp"`
	Text        string  `json:"text"`
	Romaji      string  `json:"romaji,omitempty"`
	Translation string  `json:"translation,omitempty"`
}

var (
	headerPattern = regexp.MustCompile(`^\[([a-zA-Z#]+):(.*)\]$`)
	stampPattern  = regexp.MustCompile(`^\[(\d+):(\d{1,2})(?:[.:](\d{1,3}))?\]`)
)

// Header returns a header value by tag name.
func (d Document) Header(tag string) string {
	return d.Headers[strings.ToLower(tag)]
}

// Parse reads LRC text. Unrecognized lines are ignored.
func Parse(text string) (Document, error) {
	doc := Document{Headers: map[string]string{}}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if !stampPattern.MatchString(raw) {
			if m := headerPattern.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
				doc.Headers[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
			}
			continue
		}
		var stamps []Line
		rest := raw
		for {
			m := stampPattern.FindStringSubmatchIndex(rest)
			if m == nil {
				break
			}
			t, err := stampSeconds(rest[m[2]:m[3]], rest[m[4]:m[5]], submatch(rest, m, 6))
			if err != nil {
				return Document{}, fmt.Errorf("lrc: parse %q: %w", raw, err)
			}
			stamps = append(stamps, Line{Time: t, Stamp: rest[1 : m[1]-1]})
			rest = rest[m[1]:]
		}
		columns := strings.Split(rest, "\t")
		for _, line := range stamps {
			line.Text = strings.TrimSpace(columns[0])
			if len(columns) > 1 {
				line.Romaji = strings.TrimSpace(columns[1])
			}
			if len(columns) > 2 {
				line.Translation = strings.TrimSpace(columns[2])
			}
			doc.Lines = append(doc.Lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Document{}, fmt.Errorf("lrc: read: %w", err)
	}
	return doc, nil
}

func submatch(s string, m []int, group int) string {
	if m[group] < 0 {
		return ""
	}
	return s[m[group]:m[group+1]]
}

// stampSeconds converts stamp fields. A fraction of one or two digits is
// read as hundredths scaled to its width, three digits as milliseconds.
func stampSeconds(minutes, seconds, fraction string) (float64, error) {
	mm, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	ss, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	var frac float64
	if fraction != "" {
		n, err := strconv.Atoi(fraction)
		if err != nil {
			return 0, err
		}
		switch len(fraction) {
		case 1:
			frac = float64(n) / 10
		case 2:
			frac = float64(n) / 100
		default:
			frac = float64(n) / 1000
		}
	}
	return float64(mm*60+ss) + frac, nil
}

// Metadata returns the song tags from the [ti:], [ar:], [al:] and [length:] headers.
func (d Document) Metadata() lyrics.Metadata {
	meta := lyrics.Metadata{
		Title:  d.Header("ti"),
		Artist: d.Header("ar"),
		Album:  d.Header("al"),
	}
	if length := d.Header("length"); length != "" {
		minutes, seconds, found := strings.Cut(length, ":")
		if found {
			if total, err := stampSeconds(strings.TrimSpace(minutes), strings.TrimSpace(seconds), ""); err == nil {
				meta.Duration = total
			}
		}
	}
	return meta
}

// Merged converts the timed rows back into records. Each record ends where
// the next one starts; the last one has no end.
func (d Document) Merged() []lyrics.MergedLine {
	lines := make([]lyrics.MergedLine, 0, len(d.Lines))
	for i, line := range d.Lines {
		mm, ss, mmm := lyrics.Decompose(line.Time, lyrics.MillisecondsTruncate).Format()
		merged := lyrics.MergedLine{
			Text:         line.Text,
			Minutes:      mm,
			Seconds:      ss,
			Milliseconds: mmm,
			Romaji:       line.Romaji,
			Translation:  line.Translation,
			Start:        line.Time,
		}
		if i+1 < len(d.Lines) {
			merged.End = d.Lines[i+1].Time
		}
		lines = append(lines, merged)
	}
	return lines
}
