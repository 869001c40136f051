package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"lyricsync/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LYRICSYNC_LLM_API_KEY", "OPENROUTER_API_KEY", "API_KEY_GENAI",
		"LYRICSYNC_LLM_MODEL", "GEMINI_MODEL", "LYRICSYNC_LLM_BASE_URL", "LYRICSYNC_API_TOKEN",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "lyricsync", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.RunLogPath() != filepath.Join(tempHome, ".local", "share", "lyricsync", "runs.db") {
		t.Fatalf("unexpected run log path: %q", cfg.RunLogPath())
	}
	if cfg.Alignment.Model != "base" || cfg.Alignment.Language != "ja" {
		t.Fatalf("unexpected alignment defaults: %+v", cfg.Alignment)
	}
	if cfg.Translation.MaxAttempts != 3 {
		t.Fatalf("expected 3 translation attempts, got %d", cfg.Translation.MaxAttempts)
	}
	if cfg.StagingMaxAge() != 24*time.Hour || cfg.SweepInterval() != time.Hour {
		t.Fatalf("unexpected staging sweep settings: %v %v", cfg.StagingMaxAge(), cfg.SweepInterval())
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected cors origins: %v", cfg.Server.CORSOrigins)
	}
	if err := cfg.RequireLLM(); err == nil {
		t.Fatal("expected RequireLLM to fail without credentials")
	}
}

func TestLoadEnvFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("API_KEY_GENAI", "genai-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "genai-key" {
		t.Fatalf("expected key from API_KEY_GENAI, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "google/gemini-2.5-pro" {
		t.Fatalf("expected provider-prefixed model, got %q", cfg.LLM.Model)
	}
	if err := cfg.RequireLLM(); err != nil {
		t.Fatalf("RequireLLM: %v", err)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	// t.Setenv registers restoration; unset so godotenv may populate it
	os.Unsetenv("OPENROUTER_API_KEY")
	if err := os.WriteFile(".env", []byte("OPENROUTER_API_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "from-dotenv" {
		t.Fatalf("expected key from .env, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"staging_dir": "~/custom/staging",
		},
		"llm": map[string]any{
			"api_key": "file-key",
		},
		"translation": map[string]any{
			"target_language": "DE",
			"max_attempts":    5,
			"romanizer":       "kakasi",
		},
		"output": map[string]any{
			"millisecond_policy": "Observed",
			"default_format":     "xlsx",
		},
		"logging": map[string]any{
			"format": "json",
			"level":  "debug",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.StagingDir != filepath.Join(tempHome, "custom", "staging") {
		t.Fatalf("unexpected staging dir: %q", cfg.Paths.StagingDir)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("unexpected api key: %q", cfg.LLM.APIKey)
	}
	if cfg.Translation.TargetLanguage != "de" || cfg.Translation.MaxAttempts != 5 || cfg.Translation.Romanizer != "kakasi" {
		t.Fatalf("unexpected translation config: %+v", cfg.Translation)
	}
	if cfg.Output.MillisecondPolicy != "observed" || cfg.Output.DefaultFormat != "xlsx" {
		t.Fatalf("unexpected output config: %+v", cfg.Output)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"attempts", func(c *config.Config) { c.Translation.MaxAttempts = -1 }, "max_attempts"},
		{"romanizer", func(c *config.Config) { c.Translation.Romanizer = "hepburn" }, "romanizer"},
		{"same language", func(c *config.Config) { c.Translation.TargetLanguage = "ja" }, "target_language"},
		{"ms policy", func(c *config.Config) { c.Output.MillisecondPolicy = "floor" }, "millisecond_policy"},
		{"cs policy", func(c *config.Config) { c.Output.CentisecondPolicy = "ceil" }, "centisecond_policy"},
		{"format", func(c *config.Config) { c.Output.DefaultFormat = "ass" }, "default_format"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Alignment.Package != "stable-ts" {
		t.Fatalf("unexpected alignment package: %q", cfg.Alignment.Package)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
