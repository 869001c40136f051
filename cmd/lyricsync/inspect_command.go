package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/lrc"
	"lyricsync/internal/media/ffprobe"
	"lyricsync/internal/media/tags"
)

type inspectOutput struct {
	Source  string            `json:"source"`
	Headers map[string]string `json:"headers"`
	Lines   []lrc.Line        `json:"lines"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the synchronized lyrics in an .lrc file or embedded in audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			text, err := lyricsText(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			doc, err := lrc.Parse(text)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				lines := doc.Lines
				if lines == nil {
					lines = []lrc.Line{}
				}
				return writeJSON(cmd, inspectOutput{Source: args[0], Headers: doc.Headers, Lines: lines})
			}

			out := cmd.OutOrStdout()
			keys := make([]string, 0, len(doc.Headers))
			for key := range doc.Headers {
				keys = append(keys, key)
			}
			slices.Sort(keys)
			for _, key := range keys {
				fmt.Fprintf(out, "%-8s %s\n", key+":", doc.Headers[key])
			}
			if len(doc.Lines) == 0 {
				fmt.Fprintln(out, "No timed lines")
				return nil
			}
			rows := make([][]string, 0, len(doc.Lines))
			for _, line := range doc.Lines {
				rows = append(rows, []string{line.Stamp, line.Text, line.Romaji, line.Translation})
			}
			fmt.Fprintln(out, renderTable([]string{"Time", "Text", "Romaji", "Translation"}, rows, nil))
			return nil
		},
	}
}

// lyricsText loads LRC text from an .lrc file or from the lyrics tag of an
// audio file.
func lyricsText(cmd *cobra.Command, cfg *config.Config, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lrc", ".txt", "":
		data, err := readInput(cmd, path)
		return string(data), err
	case ".flac":
		text, err := tags.ReadFLACLyrics(path)
		if err != nil {
			return "", err
		}
		if text == "" {
			return "", fmt.Errorf("%s has no embedded lyrics", path)
		}
		return text, nil
	default:
		probe, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), path)
		if err != nil {
			return "", err
		}
		text := probe.Tag(tags.LyricsField, "lyrics-eng", "unsyncedlyrics")
		if text == "" {
			return "", fmt.Errorf("%s has no embedded lyrics", path)
		}
		return text, nil
	}
}
