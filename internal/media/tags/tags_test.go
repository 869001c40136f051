package tags

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"lyricsync/internal/lyrics"
	"lyricsync/internal/media/ffprobe"
)

// writeMinimalFLAC writes a FLAC header with a STREAMINFO block and a stub frame.
func writeMinimalFLAC(t *testing.T, path string, sampleRate, samples uint64) {
	t.Helper()
	info := make([]byte, 34)
	binary.BigEndian.PutUint16(info[0:2], 4096)
	binary.BigEndian.PutUint16(info[2:4], 4096)
	packed := sampleRate<<44 | uint64(1)<<41 | uint64(15)<<36 | samples
	binary.BigEndian.PutUint64(info[10:18], packed)
	data := []byte("fLaC")
	data = append(data, 0x80, 0x00, 0x00, byte(len(info)))
	data = append(data, info...)
	data = append(data, 0xFF, 0xF8, 0x69, 0x08, 0x00, 0x00)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write flac: %v", err)
	}
}

func writeSilentWAV(t *testing.T, path string, sampleRate, frames int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, frames),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

func TestDecodeDurationFLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.flac")
	writeMinimalFLAC(t, path, 44100, 44100*3)
	d, err := DecodeDuration(path)
	if err != nil {
		t.Fatalf("DecodeDuration: %v", err)
	}
	if d != 3 {
		t.Fatalf("duration = %v, want 3", d)
	}
}

func TestDecodeDurationWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeSilentWAV(t, path, 8000, 16000)
	d, err := DecodeDuration(path)
	if err != nil {
		t.Fatalf("DecodeDuration: %v", err)
	}
	if math.Abs(d-2) > 0.01 {
		t.Fatalf("duration = %v, want 2", d)
	}
}

func TestDecodeDurationUnsupported(t *testing.T) {
	if _, err := DecodeDuration("song.ogg"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReaderUsesProbeTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01 - track.mp3")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	reader := NewReader("ffprobe", nil)
	reader.WithProber(func(context.Context, string) (ffprobe.Result, error) {
		return ffprobe.Result{Format: ffprobe.Format{
			Duration: "215.2",
			Tags:     map[string]string{"TITLE": "Yoru ni Kakeru", "album_artist": "YOASOBI", "album": "THE BOOK"},
		}}, nil
	})
	meta, err := reader.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := lyrics.Metadata{Title: "Yoru ni Kakeru", Artist: "YOASOBI", Album: "THE BOOK", Duration: 215.2}
	if meta != want {
		t.Fatalf("meta = %+v, want %+v", meta, want)
	}
}

func TestReaderFallsBackWhenProbeFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "My Song.flac")
	writeMinimalFLAC(t, path, 48000, 48000*10)
	reader := NewReader("ffprobe", nil)
	reader.WithProber(func(context.Context, string) (ffprobe.Result, error) {
		return ffprobe.Result{}, errors.New("ffprobe: not found")
	})
	meta, err := reader.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if meta.Title != "My Song" || meta.Artist != "" || meta.Duration != 10 {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader("", nil).Read(context.Background(), "/nonexistent/song.mp3"); err == nil {
		t.Fatal("expected error")
	}
}

func TestEmbedFLACRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.flac")
	dst := filepath.Join(dir, "out", "song.flac")
	writeMinimalFLAC(t, src, 44100, 44100)
	before, _ := os.ReadFile(src)

	embedder := NewEmbedder("", nil)
	text := "[00:01.00]hello\n[00:02.00]world"
	if err := embedder.Embed(context.Background(), src, dst, text, lyrics.Metadata{Title: "Song"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	got, err := ReadFLACLyrics(dst)
	if err != nil {
		t.Fatalf("ReadFLACLyrics: %v", err)
	}
	if got != text {
		t.Fatalf("lyrics = %q", got)
	}
	after, _ := os.ReadFile(src)
	if string(before) != string(after) {
		t.Fatal("source file was modified")
	}

	// Embedding again replaces the previous value.
	if err := EmbedFLAC(dst, "second", lyrics.Metadata{}); err != nil {
		t.Fatalf("EmbedFLAC: %v", err)
	}
	if got, _ := ReadFLACLyrics(dst); got != "second" {
		t.Fatalf("lyrics after re-embed = %q", got)
	}
}

func TestEmbedUsesFFmpegForOtherFormats(t *testing.T) {
	dir := t.TempDir()
	var gotName string
	var gotArgs []string
	embedder := NewEmbedder("/usr/bin/ffmpeg", nil)
	embedder.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	})
	src := filepath.Join(dir, "in.mp3")
	dst := filepath.Join(dir, "out.mp3")
	if err := embedder.Embed(context.Background(), src, dst, "[00:00.00]la", lyrics.Metadata{Artist: "A"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if gotName != "/usr/bin/ffmpeg" {
		t.Fatalf("binary = %q", gotName)
	}
	for _, want := range []string{"lyrics=[00:00.00]la", "artist=A", "copy", "-id3v2_version"} {
		if !slices.Contains(gotArgs, want) {
			t.Fatalf("args %v missing %q", gotArgs, want)
		}
	}
	if gotArgs[len(gotArgs)-1] != dst {
		t.Fatalf("last arg = %q, want output path", gotArgs[len(gotArgs)-1])
	}
	if slices.ContainsFunc(gotArgs, func(a string) bool { return strings.HasPrefix(a, "title=") }) {
		t.Fatal("empty title should not be written")
	}
}

func TestEmbedRejectsSameDestination(t *testing.T) {
	if err := NewEmbedder("", nil).Embed(context.Background(), "a.mp3", "a.mp3", "x", lyrics.Metadata{}); err == nil {
		t.Fatal("expected error")
	}
}
