package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	lyricsSheet   = "Lyrics"
	metadataSheet = "Metadata"
)

func writeXLSX(w io.Writer, doc Document) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", lyricsSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	header := make([]any, len(CSVHeader))
	for i, name := range CSVHeader {
		header[i] = name
	}
	if err := file.SetSheetRow(lyricsSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}
	if err := file.SetCellStyle(lyricsSheet, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	for i, line := range doc.Lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := recordRow(line)
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := file.SetSheetRow(lyricsSheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+1, err)
		}
	}
	for _, col := range []string{"A", "E", "F", "G"} {
		if err := file.SetColWidth(lyricsSheet, col, col, 40); err != nil {
			return err
		}
	}

	if _, err := file.NewSheet(metadataSheet); err != nil {
		return fmt.Errorf("xlsx: metadata sheet: %w", err)
	}
	meta := [][]any{
		{"title", doc.Metadata.Title},
		{"artist", doc.Metadata.Artist},
		{"album", doc.Metadata.Album},
		{"duration", doc.Metadata.Duration},
	}
	for i, row := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := file.SetSheetRow(metadataSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: metadata: %w", err)
		}
	}

	return file.Write(w)
}
