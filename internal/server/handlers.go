package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"lyricsync/internal/config"
	"lyricsync/internal/export"
	"lyricsync/internal/logging"
	"lyricsync/internal/lrc"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/pipeline"
	"lyricsync/internal/runlog"
	"lyricsync/internal/services"
	"lyricsync/internal/staging"
)

const (
	fieldAudio          = "audio_file"
	fieldLyrics         = "lyrics_text"
	fieldLanguage       = "language"
	fieldTargetLanguage = "target_language"
	fieldRecords        = "records"
	fieldMetadata       = "metadata"

	defaultRunsLimit = 20
	maxRunsLimit     = 500
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Version: s.opts.Version})
}

type processResponse struct {
	RunID    string              `json:"run_id"`
	Metadata lyrics.Metadata     `json:"metadata"`
	Lines    []lyrics.MergedLine `json:"lines"`
	Warnings []string            `json:"warnings"`
	Flags    []pipeline.Flag     `json:"flags"`
	Language string              `json:"language,omitempty"`
	Stats    lyrics.Stats        `json:"stats"`
}

// handleProcess aligns and translates an uploaded song. Input is checked
// before any file is written or external call made.
func (s *Server) handleProcess(c echo.Context) error {
	header, err := requireUpload(c)
	if err != nil {
		return err
	}
	transcript := c.FormValue(fieldLyrics)
	if strings.TrimSpace(transcript) == "" {
		return services.Wrap(services.ErrValidation, "api", "process", "lyrics_text is required", nil)
	}

	workspace, audioPath, err := s.stageUpload(header)
	if err != nil {
		return err
	}
	defer s.release(workspace)

	result, err := s.processor.Run(c.Request().Context(), pipeline.Request{
		AudioPath:      audioPath,
		Transcript:     transcript,
		Language:       strings.TrimSpace(c.FormValue(fieldLanguage)),
		TargetLanguage: strings.TrimSpace(c.FormValue(fieldTargetLanguage)),
		WorkDir:        workspace.Path,
		Source:         runlog.SourceAPI,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, processResponse{
		RunID:    result.RunID,
		Metadata: result.Metadata,
		Lines:    nonNil(result.Lines),
		Warnings: nonNil(result.Warnings),
		Flags:    nonNil(result.Flags),
		Language: result.Language,
		Stats:    result.Stats,
	})
}

// handleEmbed writes the rendered LRC into a copy of the uploaded audio and
// returns it as an attachment.
func (s *Server) handleEmbed(c echo.Context) error {
	header, err := requireUpload(c)
	if err != nil {
		return err
	}
	rawRecords := strings.TrimSpace(c.FormValue(fieldRecords))
	if rawRecords == "" {
		return services.Wrap(services.ErrValidation, "api", "embed", "records is required", nil)
	}
	doc, err := export.ReadDocument(strings.NewReader(rawRecords))
	if err != nil {
		return services.Wrap(services.ErrValidation, "api", "embed", "records is not valid JSON", err)
	}
	if raw := strings.TrimSpace(c.FormValue(fieldMetadata)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &doc.Metadata); err != nil {
			return services.Wrap(services.ErrValidation, "api", "embed", "metadata is not valid JSON", err)
		}
	}
	text, err := lrc.Render(doc.Metadata, doc.Lines, lrc.Options{Centiseconds: s.opts.Centiseconds, Version: s.opts.Version})
	if err != nil {
		return services.Wrap(services.ErrValidation, "api", "embed", "records cannot be rendered", err)
	}

	workspace, audioPath, err := s.stageUpload(header)
	if err != nil {
		return err
	}
	defer s.release(workspace)

	name := filepath.Base(audioPath)
	tagged := filepath.Join(workspace.Path, "tagged"+filepath.Ext(name))
	if err := s.embedder.Embed(c.Request().Context(), audioPath, tagged, text, doc.Metadata); err != nil {
		return services.Wrap(services.ErrExternalTool, "api", "embed", "lyrics could not be embedded", err)
	}
	return c.Attachment(tagged, name)
}

type renderRequest struct {
	Metadata lyrics.Metadata     `json:"metadata"`
	Lines    []lyrics.MergedLine `json:"lines"`
	Format   string              `json:"format"`
}

// handleRender converts records into a downloadable artifact.
func (s *Server) handleRender(c echo.Context) error {
	var req renderRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return services.Wrap(services.ErrValidation, "api", "render", "request body is not valid JSON", err)
	}
	format := export.NormalizeFormat(req.Format)
	if format == "" {
		format = s.opts.DefaultFormat
	}
	if !config.ValidFormat(format) {
		return services.Wrap(services.ErrValidation, "api", "render",
			fmt.Sprintf("format must be one of %s", strings.Join(config.ExportFormats, ", ")), nil)
	}
	if len(req.Lines) == 0 {
		return services.Wrap(services.ErrValidation, "api", "render", "lines is required", nil)
	}

	var buf bytes.Buffer
	doc := export.Document{Metadata: req.Metadata, Lines: req.Lines}
	if err := export.Write(&buf, format, doc, export.Options{Centiseconds: s.opts.Centiseconds, Version: s.opts.Version}); err != nil {
		return services.Wrap(services.ErrValidation, "api", "render", "records cannot be rendered", err)
	}
	filename := artifactName(req.Metadata.Title, format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, export.ContentType(format), buf.Bytes())
}

// handleRuns lists recent ledger entries.
func (s *Server) handleRuns(c echo.Context) error {
	limit := defaultRunsLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return services.Wrap(services.ErrValidation, "api", "runs", "limit must be a positive integer", err)
		}
		limit = min(n, maxRunsLimit)
	}
	if s.runs == nil {
		return c.JSON(http.StatusOK, []runlog.Run{})
	}
	runs, err := s.runs.List(c.Request().Context(), limit)
	if err != nil {
		return services.Wrap(services.ErrTransient, "api", "runs", "run ledger unavailable", err)
	}
	return c.JSON(http.StatusOK, nonNil(runs))
}

func requireUpload(c echo.Context) (*multipart.FileHeader, error) {
	header, err := c.FormFile(fieldAudio)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "api", "upload", "audio_file is required", err)
	}
	if strings.TrimSpace(header.Filename) == "" {
		return nil, services.Wrap(services.ErrValidation, "api", "upload", "audio_file has no filename", nil)
	}
	return header, nil
}

// stageUpload copies the upload into a fresh workspace.
func (s *Server) stageUpload(header *multipart.FileHeader) (*staging.Workspace, string, error) {
	workspace, err := staging.NewWorkspace(s.opts.StagingDir)
	if err != nil {
		return nil, "", services.Wrap(services.ErrConfiguration, "api", "stage", "staging unavailable", err)
	}
	path := workspace.File(header.Filename)
	if err := saveUpload(header, path); err != nil {
		s.release(workspace)
		return nil, "", services.Wrap(services.ErrTransient, "api", "stage", "upload could not be saved", err)
	}
	return workspace, path, nil
}

func saveUpload(header *multipart.FileHeader, path string) error {
	src, err := header.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func (s *Server) release(workspace *staging.Workspace) {
	if err := workspace.Release(); err != nil {
		logging.WarnWithContext(s.logger, "workspace cleanup failed", "staging_release_failed",
			logging.String("path", workspace.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "left for the staging sweep"),
		)
	}
}

func artifactName(title, format string) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if base == "" || base == "." || base == ".." {
		base = "lyrics"
	}
	return base + export.Extension(format)
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
