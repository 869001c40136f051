package runlog

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Kind names the operation a run performed.
type Kind string

const (
	KindProcess   Kind = "process"
	KindAlign     Kind = "align"
	KindTranslate Kind = "translate"
	KindEmbed     Kind = "embed"
)

// Source names the surface that started the run.
type Source string

const (
	SourceCLI Source = "cli"
	SourceAPI Source = "api"
)

// Run is one ledger row.
type Run struct {
	ID             string    `json:"id"`
	Kind           Kind      `json:"kind"`
	Source         Source    `json:"source"`
	AudioName      string    `json:"audio_name,omitempty"`
	Language       string    `json:"language,omitempty"`
	TargetLanguage string    `json:"target_language,omitempty"`
	AlignerModel   string    `json:"aligner_model,omitempty"`
	LLMModel       string    `json:"llm_model,omitempty"`
	Status         Status    `json:"status"`
	LineCount      int       `json:"line_count"`
	WarningCount   int       `json:"warning_count"`
	ErrorMessage   string    `json:"error,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at,omitzero"`
}

// Duration returns how long the run took, or zero while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome closes a run.
type Outcome struct {
	Lines    int
	Warnings int
	Err      error
}
