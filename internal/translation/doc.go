// Package translation runs the two-pass translate-then-review pipeline.
//
// Stage one translates the whole transcript. Stage two sends each original
// line next to its first-pass translation and asks for a more natural
// rendering. Both stages must return exactly one line per input line; a
// mismatched count is retried up to Options.MaxAttempts times and then fails
// the run with ErrLineCountMismatch. No partial result is ever returned.
// Transport errors are not retried here; the LLM client handles transient
// HTTP failures underneath.
package translation
