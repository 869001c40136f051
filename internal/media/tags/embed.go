package tags

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	flac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacvorbis"

	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
)

// LyricsField is the Vorbis comment and ffmpeg metadata key for lyrics.
const LyricsField = "LYRICS"

// Embedder writes lyrics into audio containers.
type Embedder struct {
	ffmpegBinary  string
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewEmbedder builds an embedder. An empty binary selects "ffmpeg".
func NewEmbedder(ffmpegBinary string, logger *slog.Logger) *Embedder {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Embedder{ffmpegBinary: ffmpegBinary, logger: logging.NewComponentLogger(logger, "tags")}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Embedder) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	e.commandRunner = runner
}

// Embed copies src to dst with text stored as the lyrics tag. Title, artist
// and album from meta are written when set. src is never modified.
func (e *Embedder) Embed(ctx context.Context, src, dst, text string, meta lyrics.Metadata) error {
	if src == dst {
		return fmt.Errorf("embed lyrics: destination must differ from source")
	}
	if strings.EqualFold(filepath.Ext(src), ".flac") {
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("embed lyrics: %w", err)
		}
		if err := EmbedFLAC(dst, text, meta); err != nil {
			_ = os.Remove(dst)
			return err
		}
		e.logger.Info("lyrics embedded", logging.String("format", "flac"), logging.String("path", dst))
		return nil
	}
	args := buildEmbedArgs(src, dst, text, meta)
	if err := e.run(ctx, args...); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("embed lyrics: %w", err)
	}
	e.logger.Info("lyrics embedded", logging.String("format", strings.TrimPrefix(filepath.Ext(dst), ".")), logging.String("path", dst))
	return nil
}

func buildEmbedArgs(src, dst, text string, meta lyrics.Metadata) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-map", "0",
		"-codec", "copy",
		"-metadata", "lyrics=" + text,
	}
	for _, field := range [][2]string{{"title", meta.Title}, {"artist", meta.Artist}, {"album", meta.Album}} {
		if field[1] != "" {
			args = append(args, "-metadata", field[0]+"="+field[1])
		}
	}
	if strings.EqualFold(filepath.Ext(dst), ".mp3") {
		args = append(args, "-id3v2_version", "3")
	}
	return append(args, dst)
}

func (e *Embedder) run(ctx context.Context, args ...string) error {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, e.ffmpegBinary, args...)
	}
	cmd := exec.CommandContext(ctx, e.ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// EmbedFLAC rewrites the Vorbis comment block of the FLAC file at path in place.
func EmbedFLAC(path, text string, meta lyrics.Metadata) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("embed flac: parse: %w", err)
	}
	comments, idx, err := vorbisComments(f)
	if err != nil {
		return fmt.Errorf("embed flac: %w", err)
	}
	fields := []struct{ key, value string }{
		{LyricsField, text},
		{flacvorbis.FIELD_TITLE, meta.Title},
		{flacvorbis.FIELD_ARTIST, meta.Artist},
		{flacvorbis.FIELD_ALBUM, meta.Album},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		removeComment(comments, field.key)
		if err := comments.Add(field.key, field.value); err != nil {
			return fmt.Errorf("embed flac: add %s: %w", field.key, err)
		}
	}
	block := comments.Marshal()
	if idx >= 0 {
		f.Meta[idx] = &block
	} else {
		f.Meta = append(f.Meta, &block)
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("embed flac: save: %w", err)
	}
	return nil
}

// ReadFLACLyrics returns the LYRICS comment of a FLAC file, or "" when absent.
func ReadFLACLyrics(path string) (string, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return "", fmt.Errorf("read flac: %w", err)
	}
	comments, _, err := vorbisComments(f)
	if err != nil {
		return "", err
	}
	values, err := comments.Get(LyricsField)
	if err != nil || len(values) == 0 {
		return "", err
	}
	return values[0], nil
}

func vorbisComments(f *flac.File) (*flacvorbis.MetaDataBlockVorbisComment, int, error) {
	for idx, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			comments, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return nil, idx, fmt.Errorf("parse vorbis comment: %w", err)
			}
			return comments, idx, nil
		}
	}
	return flacvorbis.New(), -1, nil
}

func removeComment(comments *flacvorbis.MetaDataBlockVorbisComment, key string) {
	kept := comments.Comments[:0]
	for _, entry := range comments.Comments {
		name, _, _ := strings.Cut(entry, "=")
		if !strings.EqualFold(name, key) {
			kept = append(kept, entry)
		}
	}
	comments.Comments = kept
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
