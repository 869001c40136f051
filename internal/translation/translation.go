package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"lyricsync/internal/language"
	"lyricsync/internal/logging"
	"lyricsync/internal/romaji"
	"lyricsync/internal/services"
)

// DefaultMaxAttempts bounds each stage when Options.MaxAttempts is unset.
const DefaultMaxAttempts = 3

// ErrLineCountMismatch reports that a stage never produced one line per input line.
var ErrLineCountMismatch = errors.New("translation line count mismatch")

// Stage identifies a translation pass.
type Stage string

const (
	StageTranslate Stage = "translate"
	StageReview    Stage = "review"
)

// Request is a single call to the external translator.
type Request struct {
	Stage    Stage
	System   string
	Prompt   string
	Expected int
}

// Translator performs one translation call and returns the produced lines.
type Translator interface {
	Translate(ctx context.Context, req Request) ([]string, error)
}

// Record is the per-line translation output.
type Record struct {
	Original            string `json:"original"`
	Romaji              string `json:"romaji"`
	Translation         string `json:"translation"`
	ImprovedTranslation string `json:"improved_translation"`
}

// Options configures a Pipeline.
type Options struct {
	MaxAttempts    int
	SourceLanguage string
	TargetLanguage string
}

// Pipeline coordinates romanization and both translation stages.
type Pipeline struct {
	opts       Options
	translator Translator
	romanizer  romaji.Romanizer
	logger     *slog.Logger
}

// NewPipeline validates opts and builds a pipeline. A nil romanizer yields empty romaji.
func NewPipeline(opts Options, translator Translator, romanizer romaji.Romanizer, logger *slog.Logger) (*Pipeline, error) {
	if translator == nil {
		return nil, services.Wrap(services.ErrConfiguration, "translation", "init", "translator required", nil)
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	opts.SourceLanguage = language.ToISO2(opts.SourceLanguage)
	opts.TargetLanguage = language.ToISO2(opts.TargetLanguage)
	if opts.SourceLanguage == "" {
		opts.SourceLanguage = "ja"
	}
	if opts.TargetLanguage == "" {
		opts.TargetLanguage = "en"
	}
	if romanizer == nil {
		romanizer = romaji.None{}
	}
	return &Pipeline{
		opts:       opts,
		translator: translator,
		romanizer:  romanizer,
		logger:     logging.NewComponentLogger(logger, "translation"),
	}, nil
}

// Options returns the effective configuration.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run translates lines and returns one record per line, blank lines included.
func (p *Pipeline) Run(ctx context.Context, lines []string) ([]Record, error) {
	return p.run(ctx, lines, p.opts)
}

// RunTarget is Run with the target language replaced. An empty or
// unrecognized target keeps the configured one.
func (p *Pipeline) RunTarget(ctx context.Context, lines []string, target string) ([]Record, error) {
	opts := p.opts
	if code := language.ToISO2(target); code != "" {
		opts.TargetLanguage = code
	}
	return p.run(ctx, lines, opts)
}

func (p *Pipeline) run(ctx context.Context, lines []string, opts Options) ([]Record, error) {
	if len(lines) == 0 {
		return nil, services.Wrap(services.ErrValidation, "translation", "run", "transcript is empty", nil)
	}
	romanized, err := p.romanizer.Romanize(ctx, lines)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "translation", "romanize", "romanizer failed", err)
	}
	if len(romanized) != len(lines) {
		return nil, services.Wrap(services.ErrExternalTool, "translation", "romanize",
			fmt.Sprintf("romanizer returned %d lines for %d", len(romanized), len(lines)), nil)
	}

	first, err := p.stage(ctx, StageTranslate, translatePrompt(opts, lines), len(lines))
	if err != nil {
		return nil, err
	}
	p.logger.Info("initial translation complete",
		logging.Int("lines", len(first)),
		logging.String("target_language", opts.TargetLanguage),
	)

	improved, err := p.stage(ctx, StageReview, reviewPrompt(opts, lines, first), len(lines))
	if err != nil {
		return nil, err
	}
	p.logger.Info("reviewed translation complete", logging.Int("lines", len(improved)))

	records := make([]Record, len(lines))
	for i, line := range lines {
		records[i] = Record{
			Original:            strings.TrimSpace(line),
			Romaji:              strings.TrimSpace(romanized[i]),
			Translation:         strings.TrimSpace(first[i]),
			ImprovedTranslation: strings.TrimSpace(improved[i]),
		}
	}
	return records, nil
}

// stage calls the translator until it returns expected lines, up to MaxAttempts calls.
func (p *Pipeline) stage(ctx context.Context, stage Stage, prompt string, expected int) ([]string, error) {
	req := Request{
		Stage:    stage,
		System:   systemPrompt(stage),
		Prompt:   prompt,
		Expected: expected,
	}
	var got int
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		p.logger.Debug("translation attempt",
			logging.String(logging.FieldStage, string(stage)),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", p.opts.MaxAttempts),
		)
		out, err := p.translator.Translate(ctx, req)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "translation", string(stage), "translator call failed", err)
		}
		if len(out) == expected {
			return out, nil
		}
		got = len(out)
		logging.WarnWithContext(p.logger, "translation line count mismatch", "translation_mismatch",
			logging.String(logging.FieldStage, string(stage)),
			logging.Int("attempt", attempt),
			logging.Int("expected_lines", expected),
			logging.Int("received_lines", got),
			logging.String(logging.FieldErrorHint, "the model merged or split lines"),
			logging.String(logging.FieldImpact, "stage will be retried"),
		)
	}
	return nil, services.Wrap(services.ErrExternalTool, "translation", string(stage),
		fmt.Sprintf("expected %d lines, last attempt returned %d after %d attempts", expected, got, p.opts.MaxAttempts),
		ErrLineCountMismatch)
}
