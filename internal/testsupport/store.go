package testsupport

import (
	"context"
	"testing"

	"lyricsync/internal/config"
	"lyricsync/internal/runlog"
)

// MustOpenRunLog opens the run ledger for tests and registers cleanup.
func MustOpenRunLog(t testing.TB, cfg *config.Config) *runlog.Store {
	t.Helper()

	store, err := runlog.Open(cfg.RunLogPath())
	if err != nil {
		t.Fatalf("runlog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun begins and finishes a run in one step.
func RecordRun(t testing.TB, store *runlog.Store, run runlog.Run, outcome runlog.Outcome) runlog.Run {
	t.Helper()

	started, err := store.Begin(context.Background(), run)
	if err != nil {
		t.Fatalf("store.Begin: %v", err)
	}
	if err := store.Finish(context.Background(), started.ID, outcome); err != nil {
		t.Fatalf("store.Finish: %v", err)
	}
	finished, err := store.Get(context.Background(), started.ID)
	if err != nil {
		t.Fatalf("store.Get: %v", err)
	}
	return finished
}
