package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lyricsync/internal/lyrics"
	"lyricsync/internal/runlog"
	"lyricsync/internal/translation"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var lyricsPath string
	var target string

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Romanize and translate a transcript with the two-pass LLM flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := requireLLM(cfg); err != nil {
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

			pipeline, err := newTranslationPipeline(cfg, logger)
			if err != nil {
				return err
			}
			ledger := openLedger(cfg, logger)
			if ledger != nil {
				defer ledger.Close()
			}

			var records []translation.Record
			run := runlog.Run{
				Kind:           runlog.KindTranslate,
				Language:       pipeline.Options().SourceLanguage,
				TargetLanguage: firstNonEmpty(target, pipeline.Options().TargetLanguage),
				LLMModel:       cfg.LLM.Model,
			}
			err = recordRun(cmd.Context(), ledger, run, logger, func() (int, int, error) {
				var err error
				records, err = pipeline.RunTarget(cmd.Context(), lines, target)
				return len(records), 0, err
			})
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, records)
			}
			rows := make([][]string, 0, len(records))
			for i, r := range records {
				rows = append(rows, []string{strconv.Itoa(i + 1), r.Original, r.Romaji, r.Translation, r.ImprovedTranslation})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Original", "Romaji", "Translation", "Reviewed"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&lyricsPath, "lyrics", "l", "", "Transcript file, one lyric line per row (\"-\" reads stdin)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Target language (default from config)")
	_ = cmd.MarkFlagRequired("lyrics")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
