package main

import (
	"context"
	"fmt"
	"log/slog"

	"lyricsync/internal/config"
	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/media/tags"
	"lyricsync/internal/pipeline"
	"lyricsync/internal/romaji"
	"lyricsync/internal/runlog"
	"lyricsync/internal/services/llm"
	"lyricsync/internal/services/stablets"
	"lyricsync/internal/translation"
)

func newAligner(cfg *config.Config, logger *slog.Logger) *stablets.Service {
	return stablets.NewService(stablets.Config{
		Model:          cfg.Alignment.Model,
		Language:       cfg.Alignment.Language,
		Device:         cfg.Alignment.Device,
		UVXBinary:      cfg.Alignment.UVXBinary,
		Package:        cfg.Alignment.Package,
		NormalizeAudio: cfg.Alignment.NormalizeAudio,
		KeepArtifacts:  cfg.Alignment.KeepArtifacts,
	}, cfg.FFmpegBinary(), logger)
}

func newTranslationPipeline(cfg *config.Config, logger *slog.Logger) (*translation.Pipeline, error) {
	client := llm.NewClient(llm.ConfigFrom(cfg.GetLLM()), llm.WithLogger(logger))
	romanizer, err := romaji.New(romaji.Options{
		Kind:         cfg.Translation.Romanizer,
		KakasiBinary: cfg.Translation.KakasiBinary,
	})
	if err != nil {
		return nil, err
	}
	return translation.NewPipeline(translation.Options{
		MaxAttempts:    cfg.Translation.MaxAttempts,
		SourceLanguage: cfg.Translation.SourceLanguage,
		TargetLanguage: cfg.Translation.TargetLanguage,
	}, translation.NewLLMTranslator(client), romanizer, logger)
}

type outputPolicies struct {
	milliseconds lyrics.MillisecondPolicy
	centiseconds lyrics.CentisecondPolicy
}

func policiesFrom(cfg *config.Config) (outputPolicies, error) {
	ms, err := lyrics.ParseMillisecondPolicy(cfg.Output.MillisecondPolicy)
	if err != nil {
		return outputPolicies{}, err
	}
	cs, err := lyrics.ParseCentisecondPolicy(cfg.Output.CentisecondPolicy)
	if err != nil {
		return outputPolicies{}, err
	}
	return outputPolicies{milliseconds: ms, centiseconds: cs}, nil
}

// newRunner builds the generate flow. ledger may be nil.
func newRunner(cfg *config.Config, ledger pipeline.Ledger, logger *slog.Logger) (*pipeline.Runner, error) {
	policies, err := policiesFrom(cfg)
	if err != nil {
		return nil, err
	}
	translator, err := newTranslationPipeline(cfg, logger)
	if err != nil {
		return nil, err
	}
	aligner := newAligner(cfg, logger)
	metadata := tags.NewReader(cfg.FFprobeBinary(), logger)
	return pipeline.NewRunner(aligner, translator, metadata, ledger, pipeline.Options{
		Milliseconds:     policies.milliseconds,
		CheckCredentials: cfg.RequireLLM,
		AlignerModel:     aligner.Model(),
		LLMModel:         cfg.LLM.Model,
		TargetLanguage:   cfg.Translation.TargetLanguage,
	}, logger), nil
}

// openLedger opens the run ledger. Failure is logged and yields nil so
// commands keep working without history.
func openLedger(cfg *config.Config, logger *slog.Logger) *runlog.Store {
	store, err := runlog.Open(cfg.RunLogPath())
	if err != nil {
		logging.WarnWithContext(logger, "run ledger unavailable", "runlog_open_failed",
			logging.String("path", cfg.RunLogPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in history"),
		)
		return nil
	}
	return store
}

// recordRun wraps a standalone stage in a ledger entry. fn returns the
// line and warning counts.
func recordRun(ctx context.Context, store *runlog.Store, run runlog.Run, logger *slog.Logger, fn func() (int, int, error)) error {
	if store == nil {
		_, _, err := fn()
		return err
	}
	if run.Source == "" {
		run.Source = runlog.SourceCLI
	}
	started, beginErr := store.Begin(ctx, run)
	lines, warnings, err := fn()
	if beginErr != nil {
		logging.WarnWithContext(logger, "run ledger begin failed", "runlog_begin_failed", logging.Error(beginErr))
		return err
	}
	outcome := runlog.Outcome{Lines: lines, Warnings: warnings, Err: err}
	if finishErr := store.Finish(context.WithoutCancel(ctx), started.ID, outcome); finishErr != nil {
		logging.WarnWithContext(logger, "run ledger update failed", "runlog_finish_failed",
			logging.String("run_id", started.ID),
			logging.Error(finishErr),
		)
	}
	return err
}

func requireLLM(cfg *config.Config) error {
	if err := cfg.RequireLLM(); err != nil {
		return fmt.Errorf("translation unavailable: %w", err)
	}
	return nil
}
