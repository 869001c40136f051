package config

const (
	defaultConfigPath           = "~/.config/lyricsync/config.toml"
	defaultStagingDir           = "~/.local/share/lyricsync/staging"
	defaultStateDir             = "~/.local/share/lyricsync"
	defaultLogDir               = "~/.local/share/lyricsync/logs"
	defaultAPIBind              = "127.0.0.1:8000"
	defaultLLMBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel             = "google/gemini-2.5-flash"
	defaultLLMTitle             = "lyricsync"
	defaultLLMTimeoutSeconds    = 120
	defaultLLMMaxRetries        = 3
	defaultSourceLanguage       = "ja"
	defaultTargetLanguage       = "en"
	defaultTranslationAttempts  = 3
	defaultRomanizer            = "kana"
	defaultKakasiBinary         = "kakasi"
	defaultAlignmentModel       = "base"
	defaultAlignmentLanguage    = "ja"
	defaultUVXBinary            = "uvx"
	defaultAlignmentPackage     = "stable-ts"
	defaultMillisecondPolicy    = "carry"
	defaultCentisecondPolicy    = "truncate"
	defaultOutputFormat         = "lrc"
	defaultCORSOrigin           = "http://localhost:5173"
	defaultMaxUploadMB          = 100
	defaultStagingMaxAgeHours   = 24
	defaultSweepIntervalMinutes = 60
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			MaxRetries:     defaultLLMMaxRetries,
		},
		Translation: Translation{
			SourceLanguage: defaultSourceLanguage,
			TargetLanguage: defaultTargetLanguage,
			MaxAttempts:    defaultTranslationAttempts,
			Romanizer:      defaultRomanizer,
			KakasiBinary:   defaultKakasiBinary,
		},
		Alignment: Alignment{
			Model:          defaultAlignmentModel,
			Language:       defaultAlignmentLanguage,
			UVXBinary:      defaultUVXBinary,
			Package:        defaultAlignmentPackage,
			NormalizeAudio: true,
		},
		Output: Output{
			MillisecondPolicy: defaultMillisecondPolicy,
			CentisecondPolicy: defaultCentisecondPolicy,
			DefaultFormat:     defaultOutputFormat,
		},
		Server: Server{
			CORSOrigins: []string{defaultCORSOrigin},
			MaxUploadMB: defaultMaxUploadMB,
		},
		Staging: Staging{
			MaxAgeHours:          defaultStagingMaxAgeHours,
			SweepIntervalMinutes: defaultSweepIntervalMinutes,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
