package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"lyricsync/internal/lyrics"
)

// CSVHeader is the column order of CSV and XLSX exports.
var CSVHeader = []string{"text", "minutes", "seconds", "milliseconds", "romaji", "translation", "improved_translation"}

func recordRow(line lyrics.MergedLine) []string {
	return []string{line.Text, line.Minutes, line.Seconds, line.Milliseconds, line.Romaji, line.Translation, line.ImprovedTranslation}
}

func writeCSV(w io.Writer, lines []lyrics.MergedLine) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, line := range lines {
		if err := writer.Write(recordRow(line)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV parses a CSV export back into records. Columns are matched by
// header name so reordered files still load.
func ReadCSV(r io.Reader) ([]lyrics.MergedLine, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read csv: missing header")
	}
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	if _, ok := index["text"]; !ok {
		return nil, fmt.Errorf("read csv: header has no text column")
	}
	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	lines := make([]lyrics.MergedLine, 0, len(rows)-1)
	for _, row := range rows[1:] {
		line := lyrics.MergedLine{
			Text:                field(row, "text"),
			Minutes:             field(row, "minutes"),
			Seconds:             field(row, "seconds"),
			Milliseconds:        field(row, "milliseconds"),
			Romaji:              field(row, "romaji"),
			Translation:         field(row, "translation"),
			ImprovedTranslation: field(row, "improved_translation"),
		}
		if parts, err := lyrics.ParseTimeParts(line.Minutes, line.Seconds, line.Milliseconds); err == nil {
			line.Start = parts.TotalSeconds()
		}
		lines = append(lines, line)
	}
	return lines, nil
}
