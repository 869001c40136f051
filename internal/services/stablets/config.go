package stablets

// Config captures runtime settings for stable-ts alignment.
type Config struct {
	// Model is the Whisper model size (e.g. "base", "small", "large-v3").
	Model string
	// Language is the default alignment language; "auto" detects it from the transcript.
	Language string
	// Device is passed to the model loader when set ("cpu", "cuda").
	Device string
	// UVXBinary is the uvx executable.
	UVXBinary string
	// Package is the pip requirement providing stable_whisper.
	Package string
	// NormalizeAudio converts input audio to 16 kHz mono WAV before alignment.
	NormalizeAudio bool
	// KeepArtifacts leaves the working files in place after alignment.
	KeepArtifacts bool
}

// stable-ts configuration constants.
const (
	DefaultModel    = "base"
	DefaultLanguage = "ja"
	DefaultPackage  = "stable-ts"
	CUDAIndexURL    = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL    = "https://pypi.org/simple"
	CUDADevice      = "cuda"
	SampleRate      = "16000"
)

// Command names for external tools.
const (
	UVXCommand    = "uvx"
	FFmpegCommand = "ffmpeg"
)

// Working file names inside the alignment directory.
const (
	scriptName     = "stable_ts_align.py"
	transcriptName = "transcript.txt"
	normalizedName = "aligned_input.wav"
	wordsName      = "words.json"
)

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.UVXBinary == "" {
		c.UVXBinary = UVXCommand
	}
	if c.Package == "" {
		c.Package = DefaultPackage
	}
	return c
}
