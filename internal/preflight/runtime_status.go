package preflight

import (
	"context"
	"fmt"
	"os"

	"lyricsync/internal/config"
	"lyricsync/internal/runlog"
)

// CheckLLMFromConfig evaluates LLM status from config and connectivity.
func CheckLLMFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "Translation LLM"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if err := cfg.RequireLLM(); err != nil {
		return Result{Name: name, Detail: "Missing API key"}
	}
	return CheckLLM(ctx, name, cfg.GetLLM())
}

// CheckRunLog opens the run ledger and reports how many runs it holds.
// A missing database is not a failure: it is created on first use.
func CheckRunLog(ctx context.Context, cfg *config.Config) Result {
	const name = "Run ledger"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	path := cfg.RunLogPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", path)}
	}
	store, err := runlog.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	total := 0
	for _, count := range stats {
		total += count
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d runs, %d failed)", path, total, stats[runlog.StatusFailed])}
}
