package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/export"
	"lyricsync/internal/lrc"
)

// loadDocument reads a previously exported document. The format follows the
// file extension: .json, .csv and .lrc are accepted; stdin is read as JSON.
func loadDocument(cmd *cobra.Command, path string) (export.Document, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return export.Document{}, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		lines, err := export.ReadCSV(bytes.NewReader(data))
		if err != nil {
			return export.Document{}, err
		}
		return export.Document{Lines: lines}, nil
	case ".lrc":
		doc, err := lrc.Parse(string(data))
		if err != nil {
			return export.Document{}, err
		}
		return export.Document{Metadata: doc.Metadata(), Lines: doc.Merged()}, nil
	case ".json", "":
		return export.ReadDocument(bytes.NewReader(data))
	default:
		return export.Document{}, fmt.Errorf("unsupported document type %q (want .json, .csv or .lrc)", ext)
	}
}

// writeArtifact renders doc to out, or to stdout when out is "-".
// Binary formats refuse stdout when it is a terminal.
func writeArtifact(cmd *cobra.Command, out, format string, doc export.Document, opts export.Options) error {
	if out == "-" {
		w := cmd.OutOrStdout()
		if format == export.FormatXLSX && shouldColorize(w) {
			return fmt.Errorf("refusing to write xlsx to a terminal; pass --out")
		}
		return export.Write(w, format, doc, opts)
	}
	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, doc, opts); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

// defaultArtifactPath places the artifact beside the audio file.
func defaultArtifactPath(audioPath, format string) string {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	return base + export.Extension(format)
}
