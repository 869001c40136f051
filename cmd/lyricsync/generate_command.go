package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/export"
	"lyricsync/internal/pipeline"
	"lyricsync/internal/runlog"
	"lyricsync/internal/staging"
)

type generateOutput struct {
	pipeline.Result
	Artifact string `json:"artifact,omitempty"`
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		lyricsPath   string
		languageFlag string
		target       string
		format       string
		out          string
	)

	cmd := &cobra.Command{
		Use:   "generate <audio>",
		Short: "Align, translate and render synchronized lyrics for one song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Output.DefaultFormat
			}
			format = export.NormalizeFormat(format)
			if !config.ValidFormat(format) {
				return fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(config.ExportFormats, ", "))
			}
			logger, err := ctx.commandLogger()
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, lyricsPath)
			if err != nil {
				return err
			}
			policies, err := policiesFrom(cfg)
			if err != nil {
				return err
			}

			ledger := openLedger(cfg, logger)
			if ledger != nil {
				defer ledger.Close()
			}
			var pipelineLedger pipeline.Ledger
			if ledger != nil {
				pipelineLedger = ledger
			}
			runner, err := newRunner(cfg, pipelineLedger, logger)
			if err != nil {
				return err
			}

			workspace, err := staging.NewWorkspace(cfg.Paths.StagingDir)
			if err != nil {
				return err
			}
			if !cfg.Alignment.KeepArtifacts {
				defer workspace.Release()
			}

			result, err := runner.Run(cmd.Context(), pipeline.Request{
				AudioPath:      args[0],
				Transcript:     string(raw),
				Language:       languageFlag,
				TargetLanguage: target,
				WorkDir:        workspace.Path,
				Source:         runlog.SourceCLI,
			})
			if err != nil {
				return err
			}

			if out == "" {
				out = defaultArtifactPath(args[0], format)
			}
			doc := export.Document{Metadata: result.Metadata, Lines: result.Lines}
			if err := writeArtifact(cmd, out, format, doc, export.Options{Centiseconds: policies.centiseconds, Version: version}); err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, generateOutput{Result: result, Artifact: out})
			}
			if out == "-" {
				return nil
			}
			w := cmd.ErrOrStderr()
			for _, warning := range result.Warnings {
				fmt.Fprintf(w, "warning: %s\n", warning)
			}
			fmt.Fprintln(cmd.OutOrStdout(), generateSummary(result, out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&lyricsPath, "lyrics", "l", "", "Transcript file, one lyric line per row (\"-\" reads stdin)")
	cmd.Flags().StringVar(&languageFlag, "language", "", "Transcript language, or \"auto\" (default from config)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Translation target language (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: "+strings.Join(config.ExportFormats, ", "))
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default beside the audio; \"-\" for stdout)")
	_ = cmd.MarkFlagRequired("lyrics")
	return cmd
}

func generateSummary(result pipeline.Result, out string) string {
	stats := result.Stats
	summary := fmt.Sprintf("Wrote %s (%d lines, %d matched, %d unmatched",
		out, stats.Lines-stats.Blank, stats.Matched, stats.Unmatched)
	if len(result.Flags) > 0 {
		summary += fmt.Sprintf(", %d flagged", len(result.Flags))
	}
	summary += ")"
	if title := strings.TrimSpace(result.Metadata.Title); title != "" {
		summary += "\nTitle: " + title
	}
	if result.Language != "" {
		summary += "\nLanguage: " + result.Language
	}
	return summary
}
