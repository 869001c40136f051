package tags

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/media/ffprobe"
)

// ProbeFunc inspects a media file.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Reader extracts song metadata.
type Reader struct {
	probe  ProbeFunc
	logger *slog.Logger
}

// NewReader builds a reader backed by the given ffprobe binary.
func NewReader(ffprobeBinary string, logger *slog.Logger) *Reader {
	return &Reader{
		probe: func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, ffprobeBinary, path)
		},
		logger: logging.NewComponentLogger(logger, "tags"),
	}
}

// WithProber overrides the probe implementation (for testing).
func (r *Reader) WithProber(probe ProbeFunc) {
	r.probe = probe
}

// Read returns title, artist, album and duration for path. A failed probe is
// logged and the decoder and file name fallbacks are used instead.
func (r *Reader) Read(ctx context.Context, path string) (lyrics.Metadata, error) {
	if _, err := os.Stat(path); err != nil {
		return lyrics.Metadata{}, fmt.Errorf("read metadata: %w", err)
	}
	var meta lyrics.Metadata
	result, err := r.probe(ctx, path)
	if err != nil {
		logging.WarnWithContext(r.logger, "ffprobe failed; using fallbacks", "metadata_probe_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffprobe or check the file is a valid audio container"),
			logging.String(logging.FieldImpact, "title from file name, no artist or album"),
		)
	} else {
		meta.Title = result.Tag("title")
		meta.Artist = result.Tag("artist", "album_artist")
		meta.Album = result.Tag("album")
		if d := result.DurationSeconds(); d > 0 && !math.IsNaN(d) {
			meta.Duration = d
		}
	}
	if meta.Title == "" {
		meta.Title = TitleFromFilename(path)
	}
	if meta.Duration == 0 {
		if d, err := DecodeDuration(path); err == nil {
			meta.Duration = d
		} else {
			r.logger.Debug("duration unavailable", logging.String("path", path), logging.Error(err))
		}
	}
	return meta, nil
}

// TitleFromFilename returns the file name without directory or extension.
func TitleFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}
