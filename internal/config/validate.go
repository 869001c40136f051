package config

import (
	"errors"
	"fmt"
	"strings"

	"lyricsync/internal/lyrics"
)

// ExportFormats lists the artifact formats the renderer supports.
var ExportFormats = []string{"lrc", "json", "csv", "xlsx", "srt", "vtt"}

// Validate ensures the configuration is usable. Missing LLM credentials are
// not an error here; RequireLLM checks them where translation runs.
func (c *Config) Validate() error {
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if c.Translation.MaxAttempts < 1 {
		return errors.New("translation.max_attempts must be at least 1")
	}
	switch c.Translation.Romanizer {
	case "kana", "kakasi", "none":
	default:
		return fmt.Errorf("translation.romanizer must be one of kana, kakasi, none (got %q)", c.Translation.Romanizer)
	}
	if c.Translation.SourceLanguage == c.Translation.TargetLanguage && c.Translation.SourceLanguage != "auto" {
		return fmt.Errorf("translation.target_language must differ from source_language (%q)", c.Translation.SourceLanguage)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if _, err := lyrics.ParseMillisecondPolicy(c.Output.MillisecondPolicy); err != nil {
		return fmt.Errorf("output.millisecond_policy: %w", err)
	}
	if _, err := lyrics.ParseCentisecondPolicy(c.Output.CentisecondPolicy); err != nil {
		return fmt.Errorf("output.centisecond_policy: %w", err)
	}
	if !ValidFormat(c.Output.DefaultFormat) {
		return fmt.Errorf("output.default_format must be one of %s (got %q)", strings.Join(ExportFormats, ", "), c.Output.DefaultFormat)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}

// ValidFormat reports whether format names a supported export.
func ValidFormat(format string) bool {
	format = strings.ToLower(strings.TrimSpace(format))
	for _, candidate := range ExportFormats {
		if candidate == format {
			return true
		}
	}
	return false
}
