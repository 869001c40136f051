package stablets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type recordedCall struct {
	name string
	args []string
}

func argValue(args []string, flag string) string {
	if i := slices.Index(args, flag); i >= 0 && i+1 < len(args) {
		return args[i+1]
	}
	return ""
}

func newTestService(t *testing.T, cfg Config, words string) (*Service, *[]recordedCall, string) {
	t.Helper()
	dir := t.TempDir()
	audio := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(audio, []byte("fake"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	var calls []recordedCall
	svc := NewService(cfg, "ffmpeg-test", nil)
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		calls = append(calls, recordedCall{name: name, args: args})
		if output := argValue(args, "--output"); output != "" {
			return os.WriteFile(output, []byte(words), 0o644)
		}
		return nil
	})
	return svc, &calls, audio
}

func TestAlignParsesWords(t *testing.T) {
	words := `{"model":"base","language":"ja","words":[{"word":" hello","start":0,"end":0.5},{"word":"world","start":0.6,"end":1.2}]}`
	svc, calls, audio := newTestService(t, Config{NormalizeAudio: true}, words)

	result, err := svc.Align(context.Background(), Request{AudioPath: audio, Transcript: "hello world"})
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if len(result.Tokens) != 2 || result.Tokens[1].Text != "world" || result.Tokens[1].End != 1.2 {
		t.Fatalf("tokens = %+v", result.Tokens)
	}
	if result.Language != "ja" || result.Model != DefaultModel {
		t.Fatalf("result = %+v", result)
	}
	if len(*calls) != 2 {
		t.Fatalf("expected ffmpeg + uvx calls, got %d", len(*calls))
	}
	ffmpeg, uvx := (*calls)[0], (*calls)[1]
	if ffmpeg.name != "ffmpeg-test" || !slices.Contains(ffmpeg.args, "16000") {
		t.Fatalf("unexpected ffmpeg call %+v", ffmpeg)
	}
	if uvx.name != UVXCommand || argValue(uvx.args, "--with") != DefaultPackage {
		t.Fatalf("unexpected uvx call %+v", uvx)
	}
	if !strings.HasSuffix(argValue(uvx.args, "--audio"), normalizedName) {
		t.Fatalf("expected normalized audio, got %v", uvx.args)
	}
	if argValue(uvx.args, "--language") != "ja" || argValue(uvx.args, "--model") != "base" {
		t.Fatalf("unexpected args %v", uvx.args)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(audio), wordsName)); !os.IsNotExist(err) {
		t.Fatalf("expected working files removed, stat err=%v", err)
	}
}

func TestAlignWithoutNormalizeUsesSource(t *testing.T) {
	svc, calls, audio := newTestService(t, Config{Model: "small", Device: "cuda", KeepArtifacts: true}, `{"words":[{"word":"a","start":1,"end":2}]}`)
	if _, err := svc.Align(context.Background(), Request{AudioPath: audio, Transcript: "a", Language: "English"}); err != nil {
		t.Fatalf("Align: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected a single uvx call, got %d", len(*calls))
	}
	args := (*calls)[0].args
	if argValue(args, "--audio") != audio || argValue(args, "--language") != "en" {
		t.Fatalf("unexpected args %v", args)
	}
	if argValue(args, "--device") != "cuda" || argValue(args, "--index-url") != CUDAIndexURL {
		t.Fatalf("expected cuda args, got %v", args)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(audio), wordsName)); err != nil {
		t.Fatalf("expected artifacts kept: %v", err)
	}
}

func TestAlignAutoLanguage(t *testing.T) {
	svc, calls, audio := newTestService(t, Config{Language: "auto"}, `{"words":[{"word":"x","start":0,"end":1}]}`)
	result, err := svc.Align(context.Background(), Request{AudioPath: audio, Transcript: "사랑해"})
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if result.Language != "ko" || argValue((*calls)[0].args, "--language") != "ko" {
		t.Fatalf("expected detected ko, got %q", result.Language)
	}
}

func TestAlignNoWordsIsNotFatal(t *testing.T) {
	svc, _, audio := newTestService(t, Config{}, `{"words":[]}`)
	result, err := svc.Align(context.Background(), Request{AudioPath: audio, Transcript: "a"})
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if result.Tokens == nil || len(result.Tokens) != 0 {
		t.Fatalf("expected empty token stream, got %#v", result.Tokens)
	}
}

func TestAlignValidation(t *testing.T) {
	svc := NewService(Config{}, "", nil)
	if _, err := svc.Align(context.Background(), Request{Transcript: "a"}); err == nil {
		t.Fatal("expected error for missing audio path")
	}
	if _, err := svc.Align(context.Background(), Request{AudioPath: "/nonexistent/a.mp3", Transcript: "a"}); err == nil {
		t.Fatal("expected error for missing audio file")
	}
	if _, err := svc.Align(context.Background(), Request{AudioPath: "a.mp3", Transcript: "  "}); err == nil {
		t.Fatal("expected error for empty transcript")
	}
}

func TestAlignRunnerFailure(t *testing.T) {
	svc, _, audio := newTestService(t, Config{}, "")
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})
	_, err := svc.Align(context.Background(), Request{AudioPath: audio, Transcript: "a"})
	if err == nil || !strings.Contains(err.Error(), "stable-ts") {
		t.Fatalf("expected stable-ts error, got %v", err)
	}
}

func TestSummarizeStderr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{"error": "RuntimeError: boom"}`, want: "RuntimeError: boom"},
		{in: "Traceback\n  File x\nValueError: bad audio\n", want: "Error: bad audio"},
		{in: "warning one\nlast line\n", want: "last line"},
		{in: "", want: "<no output>"},
	}
	for _, tt := range tests {
		if got := summarizeStderr([]byte(tt.in)); got != tt.want {
			t.Errorf("summarizeStderr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
