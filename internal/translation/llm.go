package translation

import (
	"context"
	"fmt"

	"lyricsync/internal/services/llm"
)

// Completer issues a JSON-only chat completion.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMTranslator adapts a chat completion client to Translator.
type LLMTranslator struct {
	client Completer
}

// NewLLMTranslator wraps client.
func NewLLMTranslator(client Completer) *LLMTranslator {
	return &LLMTranslator{client: client}
}

type linesPayload struct {
	Lines []string `json:"lines"`
}

// Translate implements Translator. A response that is not the expected JSON
// shape is an error; a wrong number of lines is returned as-is so the
// pipeline can retry.
func (t *LLMTranslator) Translate(ctx context.Context, req Request) ([]string, error) {
	content, err := t.client.CompleteJSON(ctx, req.System, req.Prompt)
	if err != nil {
		return nil, err
	}
	var payload linesPayload
	if err := llm.DecodeLLMJSON(content, &payload); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", req.Stage, err)
	}
	if payload.Lines == nil {
		return nil, fmt.Errorf("decode %s response: missing lines array", req.Stage)
	}
	return payload.Lines, nil
}
