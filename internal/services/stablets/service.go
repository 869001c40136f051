package stablets

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"lyricsync/internal/language"
	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
)

//go:embed align.py
var alignScript string

// Service provides stable-ts alignment.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates an aligner with the given configuration.
func NewService(cfg Config, ffmpegBinary string, logger *slog.Logger) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Service{
		cfg:          cfg.withDefaults(),
		ffmpegBinary: ffmpegBinary,
		logger:       logging.NewComponentLogger(logger, "stablets"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Request describes one alignment.
type Request struct {
	AudioPath  string
	Transcript string
	// Language overrides the configured default; "auto" detects from Transcript.
	Language string
	// WorkDir receives the intermediate files. It must exist.
	WorkDir string
}

// Result carries the aligned words and the language actually used.
type Result struct {
	Tokens   []lyrics.Token
	Language string
	Model    string
}

// Align runs the two-pass alignment and returns the recognized words.
func (s *Service) Align(ctx context.Context, req Request) (Result, error) {
	var result Result
	if strings.TrimSpace(req.AudioPath) == "" {
		return result, errors.New("align: audio path required")
	}
	if strings.TrimSpace(req.Transcript) == "" {
		return result, errors.New("align: transcript required")
	}
	if req.WorkDir == "" {
		req.WorkDir = filepath.Dir(req.AudioPath)
	}
	if _, err := os.Stat(req.AudioPath); err != nil {
		return result, fmt.Errorf("align: audio: %w", err)
	}

	requested := req.Language
	if requested == "" {
		requested = s.cfg.Language
	}
	result.Language = language.Resolve(requested, req.Transcript, DefaultLanguage)
	result.Model = s.cfg.Model

	audio := req.AudioPath
	if s.cfg.NormalizeAudio {
		normalized := filepath.Join(req.WorkDir, normalizedName)
		if err := s.normalize(ctx, req.AudioPath, normalized); err != nil {
			return result, fmt.Errorf("align: normalize audio: %w", err)
		}
		audio = normalized
	}

	scriptPath := filepath.Join(req.WorkDir, scriptName)
	if err := os.WriteFile(scriptPath, []byte(alignScript), 0o644); err != nil {
		return result, fmt.Errorf("align: write script: %w", err)
	}
	transcriptPath := filepath.Join(req.WorkDir, transcriptName)
	if err := os.WriteFile(transcriptPath, []byte(req.Transcript), 0o644); err != nil {
		return result, fmt.Errorf("align: write transcript: %w", err)
	}
	outputPath := filepath.Join(req.WorkDir, wordsName)
	if !s.cfg.KeepArtifacts {
		defer func() {
			for _, name := range []string{scriptName, transcriptName, normalizedName, wordsName} {
				_ = os.Remove(filepath.Join(req.WorkDir, name))
			}
		}()
	}

	s.logger.Info("aligning transcript",
		logging.String("model", s.cfg.Model),
		logging.String("language", result.Language),
		logging.Bool("normalized", s.cfg.NormalizeAudio),
	)
	args := s.buildArgs(scriptPath, audio, transcriptPath, outputPath, result.Language)
	if err := s.run(ctx, s.cfg.UVXBinary, args...); err != nil {
		return result, fmt.Errorf("stable-ts: %w", err)
	}

	tokens, err := LoadWords(outputPath)
	if err != nil {
		return result, err
	}
	if len(tokens) == 0 {
		logging.WarnWithContext(s.logger, "aligner returned no words", "alignment_empty",
			logging.String(logging.FieldImpact, "every line gets a zero-length marker at 0:00"),
			logging.String(logging.FieldErrorHint, "check the audio has vocals and the language matches the transcript"),
		)
		tokens = []lyrics.Token{}
	}
	result.Tokens = tokens
	s.logger.Info("alignment complete", logging.Int("words", len(tokens)))
	return result, nil
}

// normalize uses the service's command runner if configured.
func (s *Service) normalize(ctx context.Context, source, dest string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, s.ffmpegBinary, buildNormalizeArgs(source, dest)...)
	}
	return NormalizeAudio(ctx, s.ffmpegBinary, source, dest)
}

// buildArgs constructs the uvx command arguments for the alignment script.
func (s *Service) buildArgs(scriptPath, audio, transcript, output, lang string) []string {
	args := make([]string, 0, 24)
	args = append(args, "--quiet", "--with", s.cfg.Package)
	if s.cfg.Device == CUDADevice {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	}
	args = append(args,
		"python", scriptPath,
		"--audio", audio,
		"--transcript", transcript,
		"--output", output,
		"--model", s.cfg.Model,
		"--language", lang,
	)
	if s.cfg.Device != "" {
		args = append(args, "--device", s.cfg.Device)
	}
	return args
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Env = os.Environ()
	// Torch 2.6 changed torch.load to weights_only=true, which breaks older checkpoints.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(cmd.Env, "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", filepath.Base(name), err, summarizeStderr(stderr.Bytes()))
	}
	return nil
}

type wordsPayload struct {
	Model    string         `json:"model"`
	Language string         `json:"language"`
	Words    []lyrics.Token `json:"words"`
}

// LoadWords reads the word list written by the alignment script.
func LoadWords(jsonPath string) ([]lyrics.Token, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read aligner output: %w", err)
	}
	var payload wordsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse aligner output: %w", err)
	}
	return payload.Words, nil
}

// summarizeStderr pulls the most useful line out of a failed script run.
func summarizeStderr(stderr []byte) string {
	var scripted struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(bytes.TrimSpace(stderr), &scripted) == nil && scripted.Error != "" {
		return scripted.Error
	}
	msg := strings.TrimSpace(string(stderr))
	if idx := strings.LastIndex(msg, "Error:"); idx != -1 {
		return strings.TrimSpace(msg[idx:])
	}
	lines := strings.Split(msg, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "<no output>"
}
