package staging

import (
	"context"
	"log/slog"
	"time"

	"lyricsync/internal/logging"
)

// Pruner drops ledger rows older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically removes stale workspaces and prunes the run ledger.
type Sweeper struct {
	Dir      string
	MaxAge   time.Duration
	Interval time.Duration
	Pruner   Pruner
	Logger   *slog.Logger

	now func() time.Time
}

// Run sweeps once immediately, then every Interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	s.Sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs a single pass.
func (s *Sweeper) Sweep(ctx context.Context) CleanStaleResult {
	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	maxAge := s.MaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	result := CleanStale(ctx, s.Dir, maxAge, logger)
	for _, cleanupErr := range result.Errors {
		if cleanupErr.Path == s.Dir {
			logging.WarnWithContext(logger, "staging sweep could not read directory", "staging_sweep_failed",
				logging.String("path", cleanupErr.Path),
				logging.Error(cleanupErr.Error),
				logging.String(logging.FieldErrorHint, "check staging_dir exists and is readable"),
			)
		}
	}

	if s.Pruner != nil {
		now := time.Now
		if s.now != nil {
			now = s.now
		}
		removed, err := s.Pruner.Prune(ctx, now().Add(-maxAge))
		if err != nil {
			logging.WarnWithContext(logger, "run ledger prune failed", "runlog_prune_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "old run entries retained"),
			)
		} else if removed > 0 {
			logger.Info("pruned run ledger",
				logging.Int64("removed", removed),
				logging.String(logging.FieldEventType, "runlog_prune"),
			)
		}
	}
	return result
}
