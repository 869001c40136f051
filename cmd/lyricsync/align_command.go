package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"lyricsync/internal/lyrics"
	"lyricsync/internal/runlog"
	"lyricsync/internal/services/stablets"
	"lyricsync/internal/staging"
)

type alignOutput struct {
	Language    string             `json:"language"`
	Model       string             `json:"model"`
	Lines       []lyrics.LyricLine `json:"lines"`
	Stats       lyrics.Stats       `json:"stats"`
	Diagnostics []lyrics.Mismatch  `json:"diagnostics,omitempty"`
}

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var lyricsPath string
	var languageFlag string

	cmd := &cobra.Command{
		Use:   "align <audio>",
		Short: "Time each transcript line against the audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger()
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, lyricsPath)
			if err != nil {
				return err
			}
			lines := lyrics.SplitTranscript(string(raw))
			if len(lines) == 0 {
				return fmt.Errorf("lyrics text is empty")
			}

			workspace, err := staging.NewWorkspace(cfg.Paths.StagingDir)
			if err != nil {
				return err
			}
			if !cfg.Alignment.KeepArtifacts {
				defer workspace.Release()
			}

			aligner := newAligner(cfg, logger)
			ledger := openLedger(cfg, logger)
			if ledger != nil {
				defer ledger.Close()
			}

			var out alignOutput
			run := runlog.Run{
				Kind:         runlog.KindAlign,
				AudioName:    filepath.Base(args[0]),
				Language:     languageFlag,
				AlignerModel: aligner.Model(),
			}
			err = recordRun(cmd.Context(), ledger, run, logger, func() (int, int, error) {
				res, err := aligner.Align(cmd.Context(), stablets.Request{
					AudioPath:  args[0],
					Transcript: lyrics.JoinTranscript(lines),
					Language:   languageFlag,
					WorkDir:    workspace.Path,
				})
				if err != nil {
					return 0, 0, err
				}
				out.Language = res.Language
				out.Model = res.Model
				out.Lines = lyrics.Reconstruct(lines, res.Tokens)
				out.Stats = lyrics.Summarize(out.Lines)
				out.Diagnostics = lyrics.Diagnose(out.Lines, res.Tokens)
				return len(out.Lines), out.Stats.Unmatched, nil
			})
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, out)
			}
			rows := make([][]string, 0, len(out.Lines))
			for i, line := range out.Lines {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					formatSeconds(line.Start),
					formatSeconds(line.End),
					yesNo(line.Complete),
					line.RawText,
				})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderTable(
				[]string{"#", "Start", "End", "Complete", "Text"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))
			fmt.Fprintf(w, "%d lines, %d matched, %d complete, %d unmatched (language %s)\n",
				out.Stats.Lines-out.Stats.Blank, out.Stats.Matched, out.Stats.Complete, out.Stats.Unmatched, out.Language)
			for _, m := range out.Diagnostics {
				fmt.Fprintf(w, "line %d %q: %s\n", m.Index+1, m.Text, m.Diff)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lyricsPath, "lyrics", "l", "", "Transcript file, one lyric line per row (\"-\" reads stdin)")
	cmd.Flags().StringVar(&languageFlag, "language", "", "Transcript language, or \"auto\" (default from config)")
	_ = cmd.MarkFlagRequired("lyrics")
	return cmd
}

// formatSeconds renders t as MM:SS.mmm.
func formatSeconds(t float64) string {
	mm, ss, mmm := lyrics.Decompose(t, lyrics.MillisecondsCarry).Format()
	return mm + ":" + ss + "." + mmm
}
