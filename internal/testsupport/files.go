package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteUpload places a fake audio upload of size bytes at dir/name and
// returns its path. The payload starts with a RIFF marker so extension
// sniffing sees audio; it is not decodable.
func WriteUpload(t testing.TB, dir, name string, size int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	payload := append([]byte("RIFF"), bytes.Repeat([]byte{0}, max(size-4, 0))...)
	if err := os.WriteFile(path, payload[:max(size, 1)], 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Age moves the modification time of path back by d.
func Age(t testing.TB, path string, d time.Duration) {
	t.Helper()

	when := time.Now().Add(-d)
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatalf("age %s: %v", path, err)
	}
}
