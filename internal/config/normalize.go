package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeTranslation()
	c.normalizeAlignment()
	c.normalizeOutput()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		c.Paths.APIToken = firstEnv("LYRICSYNC_API_TOKEN")
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = firstEnv("LYRICSYNC_LLM_API_KEY", "OPENROUTER_API_KEY", "API_KEY_GENAI")
	}
	if value := firstEnv("LYRICSYNC_LLM_BASE_URL"); value != "" {
		c.LLM.BaseURL = value
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if value := firstEnv("LYRICSYNC_LLM_MODEL"); value != "" {
		c.LLM.Model = value
	} else if value := firstEnv("GEMINI_MODEL"); value != "" {
		// bare Gemini model names are routed through the google provider
		if !strings.Contains(value, "/") {
			value = "google/" + value
		}
		c.LLM.Model = value
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = 0
	}
}

func (c *Config) normalizeTranslation() {
	c.Translation.SourceLanguage = strings.ToLower(strings.TrimSpace(c.Translation.SourceLanguage))
	if c.Translation.SourceLanguage == "" {
		c.Translation.SourceLanguage = defaultSourceLanguage
	}
	c.Translation.TargetLanguage = strings.ToLower(strings.TrimSpace(c.Translation.TargetLanguage))
	if c.Translation.TargetLanguage == "" {
		c.Translation.TargetLanguage = defaultTargetLanguage
	}
	if c.Translation.MaxAttempts == 0 {
		c.Translation.MaxAttempts = defaultTranslationAttempts
	}
	c.Translation.Romanizer = strings.ToLower(strings.TrimSpace(c.Translation.Romanizer))
	if c.Translation.Romanizer == "" {
		c.Translation.Romanizer = defaultRomanizer
	}
	c.Translation.KakasiBinary = strings.TrimSpace(c.Translation.KakasiBinary)
	if c.Translation.KakasiBinary == "" {
		c.Translation.KakasiBinary = defaultKakasiBinary
	}
}

func (c *Config) normalizeAlignment() {
	c.Alignment.Model = strings.TrimSpace(c.Alignment.Model)
	if c.Alignment.Model == "" {
		c.Alignment.Model = defaultAlignmentModel
	}
	c.Alignment.Language = strings.ToLower(strings.TrimSpace(c.Alignment.Language))
	if c.Alignment.Language == "" {
		c.Alignment.Language = defaultAlignmentLanguage
	}
	c.Alignment.Device = strings.ToLower(strings.TrimSpace(c.Alignment.Device))
	c.Alignment.UVXBinary = strings.TrimSpace(c.Alignment.UVXBinary)
	if c.Alignment.UVXBinary == "" {
		c.Alignment.UVXBinary = defaultUVXBinary
	}
	c.Alignment.Package = strings.TrimSpace(c.Alignment.Package)
	if c.Alignment.Package == "" {
		c.Alignment.Package = defaultAlignmentPackage
	}
}

func (c *Config) normalizeOutput() {
	c.Output.MillisecondPolicy = strings.ToLower(strings.TrimSpace(c.Output.MillisecondPolicy))
	if c.Output.MillisecondPolicy == "" {
		c.Output.MillisecondPolicy = defaultMillisecondPolicy
	}
	c.Output.CentisecondPolicy = strings.ToLower(strings.TrimSpace(c.Output.CentisecondPolicy))
	if c.Output.CentisecondPolicy == "" {
		c.Output.CentisecondPolicy = defaultCentisecondPolicy
	}
	c.Output.DefaultFormat = strings.ToLower(strings.TrimSpace(c.Output.DefaultFormat))
	if c.Output.DefaultFormat == "" {
		c.Output.DefaultFormat = defaultOutputFormat
	}
}

func (c *Config) normalizeServer() {
	origins := make([]string, 0, len(c.Server.CORSOrigins))
	for _, origin := range c.Server.CORSOrigins {
		if trimmed := strings.TrimRight(strings.TrimSpace(origin), "/"); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.Server.CORSOrigins = origins
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = defaultMaxUploadMB
	}
	if c.Staging.MaxAgeHours <= 0 {
		c.Staging.MaxAgeHours = defaultStagingMaxAgeHours
	}
	if c.Staging.SweepIntervalMinutes <= 0 {
		c.Staging.SweepIntervalMinutes = defaultSweepIntervalMinutes
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console", "text", "pretty":
		c.Logging.Format = "console"
	default:
		c.Logging.Format = format
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
