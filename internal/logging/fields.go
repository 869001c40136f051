package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for pipeline run identifiers.
	FieldRunID = "run_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldSource is the standardized structured logging key for the entry point (cli/api).
	FieldSource = "source"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType names what happened in machine-friendly form.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step after a warning or error.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType tags log lines that record an automatic choice.
	FieldDecisionType = "decision_type"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

// highlightKeys are printed first on console info lines, in this order.
var highlightKeys = []string{
	FieldAlert,
	FieldEventType,
	FieldDecisionType,
	"decision_result",
	"decision_reason",
	"error",
	FieldErrorHint,
	FieldImpact,
	"audio_file",
	"language",
	"target_language",
	"lines",
	"matched",
	"unmatched",
	"attempt",
	"max_attempts",
	"stage_duration",
	"status",
}

var labels = map[string]string{
	FieldAlert:        "Alert",
	FieldEventType:    "Event",
	FieldDecisionType: "Decision",
	"decision_result": "Result",
	"decision_reason": "Reason",
	FieldErrorHint:    "Hint",
	"audio_file":      "Audio",
	"target_language": "Target",
	"stage_duration":  "Duration",
	"max_attempts":    "Max Attempts",
}

// debugOnlyKey reports keys hidden from console info lines.
func debugOnlyKey(key string) bool {
	switch key {
	case FieldCorrelationID, "normalized_text", "prompt", "payload", "command":
		return true
	}
	return false
}
