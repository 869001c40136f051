package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/export"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Convert an exported document (.json, .csv, .lrc) to another format",
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
			policies, err := policiesFrom(cfg)
			if err != nil {
				return err
			}
			doc, err := loadDocument(cmd, args[0])
			if err != nil {
				return err
			}
			if len(doc.Lines) == 0 {
				return fmt.Errorf("%s contains no lines", args[0])
			}
			return writeArtifact(cmd, out, format, doc, export.Options{Centiseconds: policies.centiseconds, Version: version})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: "+strings.Join(config.ExportFormats, ", "))
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output path (\"-\" for stdout)")
	return cmd
}
