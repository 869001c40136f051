package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/runlog"
	"lyricsync/internal/services"
	"lyricsync/internal/services/stablets"
	"lyricsync/internal/translation"
)

// Aligner produces word timings for a transcript.
type Aligner interface {
	Align(ctx context.Context, req stablets.Request) (stablets.Result, error)
}

// Translator produces one record per transcript line. An empty target
// selects the translator's configured language.
type Translator interface {
	RunTarget(ctx context.Context, lines []string, target string) ([]translation.Record, error)
}

// MetadataReader reads song tags from the audio file.
type MetadataReader interface {
	Read(ctx context.Context, path string) (lyrics.Metadata, error)
}

// Ledger records run outcomes.
type Ledger interface {
	Begin(ctx context.Context, run runlog.Run) (runlog.Run, error)
	Finish(ctx context.Context, id string, outcome runlog.Outcome) error
}

// Options configures a Runner.
type Options struct {
	Milliseconds lyrics.MillisecondPolicy
	// CheckCredentials runs before any external call. A non-nil error
	// aborts the run as a configuration failure.
	CheckCredentials func() error
	AlignerModel     string
	LLMModel         string
	TargetLanguage   string
}

// Runner executes the full generate flow.
type Runner struct {
	aligner    Aligner
	translator Translator
	metadata   MetadataReader
	ledger     Ledger
	opts       Options
	logger     *slog.Logger
}

// NewRunner wires the collaborators. metadata and ledger may be nil.
func NewRunner(aligner Aligner, translator Translator, metadata MetadataReader, ledger Ledger, opts Options, logger *slog.Logger) *Runner {
	return &Runner{
		aligner:    aligner,
		translator: translator,
		metadata:   metadata,
		ledger:     ledger,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Request is one song to process.
type Request struct {
	AudioPath  string
	Transcript string
	// Language is the transcript language, "auto", or empty for the
	// aligner default.
	Language string
	// TargetLanguage overrides the configured translation target.
	TargetLanguage string
	WorkDir        string
	Source         runlog.Source
}

// Result is the merged output of a run.
type Result struct {
	RunID       string              `json:"run_id"`
	Metadata    lyrics.Metadata     `json:"metadata"`
	Lines       []lyrics.MergedLine `json:"lines"`
	Warnings    []string            `json:"warnings"`
	Flags       []Flag              `json:"flags"`
	Language    string              `json:"language"`
	Stats       lyrics.Stats        `json:"stats"`
	Diagnostics []lyrics.Mismatch   `json:"diagnostics,omitempty"`
}

type alignOutcome struct {
	lines       []lyrics.LyricLine
	language    string
	diagnostics []lyrics.Mismatch
	err         error
}

type translateOutcome struct {
	records []translation.Record
	err     error
}

// Run validates the request, aligns and translates concurrently, and merges.
// When both halves fail the alignment error is returned.
func (r *Runner) Run(ctx context.Context, req Request) (result Result, err error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "pipeline", "validate", "audio file required", nil)
	}
	lines := lyrics.SplitTranscript(req.Transcript)
	if len(lines) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "pipeline", "validate", "lyrics text is empty", nil)
	}
	if r.aligner == nil || r.translator == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "init", "aligner and translator required", nil)
	}
	if r.opts.CheckCredentials != nil {
		if err := r.opts.CheckCredentials(); err != nil {
			return Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "credentials", "translation unavailable", err)
		}
	}

	run := r.begin(ctx, req)
	result.RunID = run.ID
	ctx = services.WithRunID(ctx, run.ID)
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()
	defer func() {
		r.finish(ctx, run.ID, len(result.Lines), len(result.Warnings), err)
	}()

	if r.metadata != nil {
		meta, metaErr := r.metadata.Read(ctx, req.AudioPath)
		if metaErr != nil {
			return result, services.Wrap(services.ErrValidation, "pipeline", "metadata", "cannot read audio file", metaErr)
		}
		result.Metadata = meta
	}

	logger.Info("pipeline started",
		logging.Int("lines", len(lines)),
		logging.String("audio", filepath.Base(req.AudioPath)),
	)

	var (
		wg         sync.WaitGroup
		aligned    alignOutcome
		translated translateOutcome
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		aligned = r.align(services.WithStage(ctx, "alignment"), req, lines)
	}()
	go func() {
		defer wg.Done()
		records, err := r.translator.RunTarget(services.WithStage(ctx, "translation"), lines, req.TargetLanguage)
		translated = translateOutcome{records: records, err: err}
	}()
	wg.Wait()

	if aligned.err != nil {
		return result, classify(aligned.err, "alignment", "align", "forced alignment failed")
	}
	if translated.err != nil {
		return result, classify(translated.err, "translation", "translate", "translation failed")
	}

	merged, report := Merge(aligned.lines, translated.records, MergeOptions{Milliseconds: r.opts.Milliseconds})
	result.Lines = merged
	result.Warnings = report.Warnings
	result.Flags = report.Flags
	result.Language = aligned.language
	result.Stats = lyrics.Summarize(aligned.lines)
	result.Diagnostics = aligned.diagnostics
	if result.Stats.Unmatched > 0 {
		logging.WarnWithContext(logger, "some lines received no aligned words", "alignment_unmatched",
			logging.Int("unmatched", result.Stats.Unmatched),
			logging.String(logging.FieldImpact, "unmatched lines reuse the previous line's end time"),
			logging.String(logging.FieldErrorHint, "check the transcript matches the sung lyrics"),
		)
	}
	logger.Info("pipeline complete",
		logging.Int("lines", len(merged)),
		logging.Int("flags", len(report.Flags)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (r *Runner) align(ctx context.Context, req Request, lines []string) alignOutcome {
	res, err := r.aligner.Align(ctx, stablets.Request{
		AudioPath:  req.AudioPath,
		Transcript: lyrics.JoinTranscript(lines),
		Language:   req.Language,
		WorkDir:    req.WorkDir,
	})
	if err != nil {
		return alignOutcome{err: err}
	}
	reconstructed := lyrics.Reconstruct(lines, res.Tokens)
	return alignOutcome{
		lines:       reconstructed,
		language:    res.Language,
		diagnostics: lyrics.Diagnose(reconstructed, res.Tokens),
	}
}

func (r *Runner) begin(ctx context.Context, req Request) runlog.Run {
	run := runlog.Run{
		Kind:           runlog.KindProcess,
		Source:         req.Source,
		AudioName:      filepath.Base(req.AudioPath),
		Language:       req.Language,
		TargetLanguage: firstNonEmpty(req.TargetLanguage, r.opts.TargetLanguage),
		AlignerModel:   r.opts.AlignerModel,
		LLMModel:       r.opts.LLMModel,
	}
	if r.ledger != nil {
		recorded, err := r.ledger.Begin(ctx, run)
		if err == nil {
			return recorded
		}
		logging.WarnWithContext(r.logger, "run ledger unavailable", "runlog_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will not appear in history"),
		)
	}
	run.ID = uuid.NewString()
	return run
}

func (r *Runner) finish(ctx context.Context, id string, lines, warnings int, runErr error) {
	if r.ledger == nil {
		return
	}
	// ledger writes outlive a cancelled request
	ctx = context.WithoutCancel(ctx)
	if err := r.ledger.Finish(ctx, id, runlog.Outcome{Lines: lines, Warnings: warnings, Err: runErr}); err != nil && !errors.Is(err, runlog.ErrNotFound) {
		logging.WarnWithContext(r.logger, "run ledger update failed", "runlog_finish_failed",
			logging.String("run_id", id),
			logging.Error(err),
		)
	}
}

var markers = []error{
	services.ErrValidation,
	services.ErrConfiguration,
	services.ErrExternalTool,
	services.ErrNotFound,
	services.ErrTimeout,
	services.ErrTransient,
}

// classify keeps an existing marker and otherwise tags err as an external
// tool failure, or a timeout when the context expired.
func classify(err error, stage, operation, message string) error {
	for _, marker := range markers {
		if errors.Is(err, marker) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, stage, operation, message, err)
	}
	return services.Wrap(services.ErrExternalTool, stage, operation, message, err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
