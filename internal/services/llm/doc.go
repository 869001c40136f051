// Package llm provides an OpenRouter-compatible chat client used for lyric
// translation and review.
//
// NewClient builds a client from Config (ConfigFrom converts the application
// settings). CompleteJSON requests a JSON-only completion and returns the raw
// payload; DecodeLLMJSON tolerates code fences and surrounding prose when
// unmarshalling it. HealthCheck issues a tiny request to confirm the key and
// model work.
//
// Requests are retried on HTTP 408/429/5xx, empty completions, and network
// timeouts with exponential backoff. Retry-After is honoured when present.
// Context cancellation aborts retries immediately. Other 4xx responses fail
// on the first attempt.
package llm
