package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lyricsync/internal/logging"
	"lyricsync/internal/testsupport"
)

const sweepAge = 24 * time.Hour

func newUploadWorkspace(t *testing.T, root string, age time.Duration) *Workspace {
	t.Helper()
	ws, err := NewWorkspace(root)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	testsupport.WriteUpload(t, ws.Path, "song.wav", 64)
	if age > 0 {
		testsupport.Age(t, ws.Path, age)
	}
	return ws
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, sweepAge, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleKeepsYoungWorkspaces(t *testing.T) {
	root := t.TempDir()
	fresh := newUploadWorkspace(t, root, 0)
	inFlight := newUploadWorkspace(t, root, 23*time.Hour)
	abandoned := newUploadWorkspace(t, root, 25*time.Hour)

	result := CleanStale(context.Background(), root, sweepAge, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != abandoned.Path {
		t.Fatalf("removed = %v, want only %s", result.Removed, abandoned.Path)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	for _, ws := range []*Workspace{fresh, inFlight} {
		if _, err := os.Stat(ws.File("song.wav")); err != nil {
			t.Errorf("workspace %s lost its upload: %v", ws.ID, err)
		}
	}
	if _, err := os.Stat(abandoned.Path); !os.IsNotExist(err) {
		t.Errorf("abandoned workspace still present: %v", err)
	}
}

func TestCleanStaleIgnoresLooseFiles(t *testing.T) {
	root := t.TempDir()
	loose := testsupport.WriteUpload(t, root, "orphan.wav", 16)
	testsupport.Age(t, loose, 48*time.Hour)

	result := CleanStale(context.Background(), root, sweepAge, logging.NewNop())

	if len(result.Removed) != 0 {
		t.Errorf("expected no removals for files, got %v", result.Removed)
	}
	if _, err := os.Stat(loose); err != nil {
		t.Error("loose file should not have been removed")
	}
}

func TestCleanStaleStopsOnCancelledContext(t *testing.T) {
	root := t.TempDir()
	abandoned := newUploadWorkspace(t, root, 48*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := CleanStale(ctx, root, sweepAge, logging.NewNop())

	if len(result.Removed) != 0 {
		t.Fatalf("cancelled sweep removed %v", result.Removed)
	}
	if _, err := os.Stat(abandoned.Path); err != nil {
		t.Fatalf("workspace removed after cancel: %v", err)
	}
}

func TestListDirectoriesInvalidPaths(t *testing.T) {
	for _, path := range []string{"", "/nonexistent/path/12345"} {
		dirs, err := ListDirectories(path)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", path, err)
		}
		if dirs != nil {
			t.Errorf("expected nil for path %q, got %v", path, dirs)
		}
	}
}

func TestListDirectoriesReportsWorkspaces(t *testing.T) {
	root := t.TempDir()
	first := newUploadWorkspace(t, root, 0)
	testsupport.WriteUpload(t, first.Path, filepath.Join("work", "normalized.wav"), 100)
	second := newUploadWorkspace(t, root, 0)
	testsupport.WriteUpload(t, root, "not-a-workspace.txt", 8)

	dirs, err := ListDirectories(root)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("expected 2 workspaces, got %d", len(dirs))
	}
	sizes := map[string]int64{}
	for _, d := range dirs {
		if d.Path != filepath.Join(root, d.Name) {
			t.Errorf("Path = %q, want %q", d.Path, filepath.Join(root, d.Name))
		}
		if d.ModTime.IsZero() {
			t.Errorf("%s has zero ModTime", d.Name)
		}
		sizes[d.Name] = d.Size
	}
	if sizes[first.ID] != 164 {
		t.Errorf("first workspace size = %d, want 164", sizes[first.ID])
	}
	if sizes[second.ID] != 64 {
		t.Errorf("second workspace size = %d, want 64", sizes[second.ID])
	}
}
