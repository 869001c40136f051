package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/lrc"
	"lyricsync/internal/media/tags"
	"lyricsync/internal/runlog"
)

func newEmbedCommand(ctx *commandContext) *cobra.Command {
	var recordsPath string
	var out string
	var title, artist, album string

	cmd := &cobra.Command{
		Use:   "embed <audio>",
		Short: "Write synchronized lyrics into a tagged copy of an audio file",
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
			policies, err := policiesFrom(cfg)
			if err != nil {
				return err
			}
			doc, err := loadDocument(cmd, recordsPath)
			if err != nil {
				return err
			}
			if len(doc.Lines) == 0 {
				return fmt.Errorf("%s contains no lines", recordsPath)
			}

			src := args[0]
			meta := doc.Metadata
			if meta.Title == "" && meta.Artist == "" {
				probed, err := tags.NewReader(cfg.FFprobeBinary(), logger).Read(cmd.Context(), src)
				if err != nil {
					return err
				}
				meta = probed
			}
			meta.Title = firstNonEmpty(strings.TrimSpace(title), meta.Title)
			meta.Artist = firstNonEmpty(strings.TrimSpace(artist), meta.Artist)
			meta.Album = firstNonEmpty(strings.TrimSpace(album), meta.Album)

			text, err := lrc.Render(meta, doc.Lines, lrc.Options{Centiseconds: policies.centiseconds, Version: version})
			if err != nil {
				return err
			}
			if out == "" {
				ext := filepath.Ext(src)
				out = strings.TrimSuffix(src, ext) + ".lyrics" + ext
			}

			ledger := openLedger(cfg, logger)
			if ledger != nil {
				defer ledger.Close()
			}
			embedder := tags.NewEmbedder(cfg.FFmpegBinary(), logger)
			run := runlog.Run{Kind: runlog.KindEmbed, AudioName: filepath.Base(src)}
			err = recordRun(cmd.Context(), ledger, run, logger, func() (int, int, error) {
				return len(doc.Lines), 0, embedder.Embed(cmd.Context(), src, out, text, meta)
			})
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"output": out, "lines": len(doc.Lines), "metadata": meta})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&recordsPath, "records", "r", "", "Document to embed (.json, .csv or .lrc)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output audio path (default <name>.lyrics<ext> beside the source)")
	cmd.Flags().StringVar(&title, "title", "", "Override the title tag")
	cmd.Flags().StringVar(&artist, "artist", "", "Override the artist tag")
	cmd.Flags().StringVar(&album, "album", "", "Override the album tag")
	_ = cmd.MarkFlagRequired("records")
	return cmd
}
