package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"lyricsync/internal/lrc"
	"lyricsync/internal/lyrics"
)

// Supported formats.
const (
	FormatLRC  = "lrc"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatSRT  = "srt"
	FormatVTT  = "vtt"
)

// Document is the unit every exporter writes.
type Document struct {
	Metadata lyrics.Metadata     `json:"metadata"`
	Lines    []lyrics.MergedLine `json:"lines"`
}

// Options tunes format-specific rendering.
type Options struct {
	Centiseconds lyrics.CentisecondPolicy
	Version      string
}

// ErrUnknownFormat reports an unsupported format name.
var ErrUnknownFormat = errors.New("unknown export format")

// Write renders doc in format to w.
func Write(w io.Writer, format string, doc Document, opts Options) error {
	switch NormalizeFormat(format) {
	case FormatLRC:
		text, err := lrc.Render(doc.Metadata, doc.Lines, lrc.Options{Centiseconds: opts.Centiseconds, Version: opts.Version})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, text)
		return err
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatCSV:
		return writeCSV(w, doc.Lines)
	case FormatXLSX:
		return writeXLSX(w, doc)
	case FormatSRT:
		return writeSubtitles(w, doc.Lines, FormatSRT)
	case FormatVTT:
		return writeSubtitles(w, doc.Lines, FormatVTT)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// NormalizeFormat lower-cases and strips a leading dot.
func NormalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) string {
	return "." + NormalizeFormat(format)
}

// ContentType returns the MIME type served for format.
func ContentType(format string) string {
	switch NormalizeFormat(format) {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatSRT:
		return "application/x-subrip; charset=utf-8"
	case FormatVTT:
		return "text/vtt; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w io.Writer, doc Document) error {
	if doc.Lines == nil {
		doc.Lines = []lyrics.MergedLine{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// ReadDocument decodes a JSON document. A bare array of records is accepted
// as well as the {metadata, lines} object.
func ReadDocument(r io.Reader) (Document, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return Document{}, err
	}
	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "[") {
		var lines []lyrics.MergedLine
		if err := json.Unmarshal([]byte(trimmed), &lines); err != nil {
			return Document{}, fmt.Errorf("decode records: %w", err)
		}
		return Document{Lines: lines}, nil
	}
	var doc Document
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
