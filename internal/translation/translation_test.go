package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"lyricsync/internal/romaji"
	"lyricsync/internal/services"
	"lyricsync/internal/services/llm"
)

type stubTranslator struct {
	calls     []Request
	responses map[Stage][][]string
	err       error
}

func (s *stubTranslator) Translate(_ context.Context, req Request) ([]string, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	queue := s.responses[req.Stage]
	if len(queue) == 0 {
		return nil, errors.New("no stub response left")
	}
	out := queue[0]
	if len(queue) > 1 {
		s.responses[req.Stage] = queue[1:]
	}
	return out, nil
}

func (s *stubTranslator) countStage(stage Stage) int {
	n := 0
	for _, c := range s.calls {
		if c.Stage == stage {
			n++
		}
	}
	return n
}

func newTestPipeline(t *testing.T, translator Translator, attempts int) *Pipeline {
	t.Helper()
	p, err := NewPipeline(Options{MaxAttempts: attempts, SourceLanguage: "ja", TargetLanguage: "en"}, translator, romaji.Kana{}, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestPipelineSuccess(t *testing.T) {
	stub := &stubTranslator{responses: map[Stage][][]string{
		StageTranslate: {{"cherry blossom", "", "sky"}},
		StageReview:    {{"cherry blossoms", "", "the sky"}},
	}}
	p := newTestPipeline(t, stub, 3)
	records, err := p.Run(context.Background(), []string{"さくら", "", "そら"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []Record{
		{Original: "さくら", Romaji: "sakura", Translation: "cherry blossom", ImprovedTranslation: "cherry blossoms"},
		{},
		{Original: "そら", Romaji: "sora", Translation: "sky", ImprovedTranslation: "the sky"},
	}
	if !slices.Equal(records, want) {
		t.Fatalf("records = %+v", records)
	}
	if len(stub.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(stub.calls))
	}
	review := stub.calls[1]
	if !strings.Contains(review.Prompt, "さくら\tcherry blossom") || review.Expected != 3 {
		t.Fatalf("review prompt missing interleaved rows: %q", review.Prompt)
	}
}

func TestPipelineRetriesMismatchThenSucceeds(t *testing.T) {
	stub := &stubTranslator{responses: map[Stage][][]string{
		StageTranslate: {{"only one"}, {"a", "b"}},
		StageReview:    {{"A", "B"}},
	}}
	p := newTestPipeline(t, stub, 3)
	records, err := p.Run(context.Background(), []string{"あ", "い"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stub.countStage(StageTranslate) != 2 || stub.countStage(StageReview) != 1 {
		t.Fatalf("unexpected call counts: %d translate, %d review", stub.countStage(StageTranslate), stub.countStage(StageReview))
	}
	if records[1].ImprovedTranslation != "B" {
		t.Fatalf("records = %+v", records)
	}
}

func TestPipelineFailsClosedAfterMaxAttempts(t *testing.T) {
	stub := &stubTranslator{responses: map[Stage][][]string{
		StageTranslate: {{"one", "two", "three"}},
	}}
	p := newTestPipeline(t, stub, 3)
	records, err := p.Run(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error")
	}
	if records != nil {
		t.Fatalf("expected no partial output, got %+v", records)
	}
	if !errors.Is(err, ErrLineCountMismatch) || !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.calls) != 3 {
		t.Fatalf("expected exactly 3 calls, got %d", len(stub.calls))
	}
}

func TestPipelineReviewStageFailsClosed(t *testing.T) {
	stub := &stubTranslator{responses: map[Stage][][]string{
		StageTranslate: {{"x"}},
		StageReview:    {{}},
	}}
	p := newTestPipeline(t, stub, 2)
	if _, err := p.Run(context.Background(), []string{"あ"}); !errors.Is(err, ErrLineCountMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if stub.countStage(StageReview) != 2 {
		t.Fatalf("expected 2 review calls, got %d", stub.countStage(StageReview))
	}
}

func TestPipelineDoesNotRetryTranslatorErrors(t *testing.T) {
	stub := &stubTranslator{err: errors.New("connection refused")}
	p := newTestPipeline(t, stub, 3)
	_, err := p.Run(context.Background(), []string{"a"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("expected a single call, got %d", len(stub.calls))
	}
}

func TestPipelineRejectsEmptyInput(t *testing.T) {
	p := newTestPipeline(t, &stubTranslator{}, 3)
	if _, err := p.Run(context.Background(), nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewPipelineDefaults(t *testing.T) {
	p, err := NewPipeline(Options{SourceLanguage: "Japanese", TargetLanguage: "eng"}, &stubTranslator{}, nil, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	got := p.Options()
	if got.MaxAttempts != DefaultMaxAttempts || got.SourceLanguage != "ja" || got.TargetLanguage != "en" {
		t.Fatalf("options = %+v", got)
	}
	if _, err := NewPipeline(Options{}, nil, nil, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestInterleaveForReview(t *testing.T) {
	got := InterleaveForReview([]string{" a ", "b", "c"}, []string{"x", "y"})
	if got != "a\tx\nb\ty\nc\t" {
		t.Fatalf("got %q", got)
	}
}

func TestLLMTranslatorAgainstServer(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		content := `{"lines":["first","second"]}`
		if len(body.Messages) == 2 && strings.Contains(body.Messages[1].Content, "LYRICS TO REVIEW") {
			content = "```json\n{\"lines\":[\"First!\",\"Second!\"]}\n```"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	defer server.Close()

	client := llm.NewClient(llm.Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		llm.WithRetryBackoff(0, 0), llm.WithSleeper(func(time.Duration) {}))
	p := newTestPipeline(t, NewLLMTranslator(client), 3)
	records, err := p.Run(context.Background(), []string{"一", "二"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if records[0].Translation != "first" || records[1].ImprovedTranslation != "Second!" {
		t.Fatalf("records = %+v", records)
	}
	if calls != 2 {
		t.Fatalf("expected 2 HTTP calls, got %d", calls)
	}
}

type staticCompleter string

func (s staticCompleter) CompleteJSON(context.Context, string, string) (string, error) {
	return string(s), nil
}

func TestLLMTranslatorMalformedResponse(t *testing.T) {
	for _, content := range []string{"not json", `{"text":"no lines"}`} {
		if _, err := NewLLMTranslator(staticCompleter(content)).Translate(context.Background(), Request{Stage: StageTranslate}); err == nil {
			t.Errorf("expected error for %q", content)
		}
	}
}

func TestPipelineRunTargetOverridesLanguage(t *testing.T) {
	stub := &stubTranslator{responses: map[Stage][][]string{
		StageTranslate: {{"sakura"}},
		StageReview:    {{"Sakura"}},
	}}
	p := newTestPipeline(t, stub, 3)
	if _, err := p.RunTarget(context.Background(), []string{"さくら"}, "French"); err != nil {
		t.Fatalf("RunTarget: %v", err)
	}
	if !strings.Contains(stub.calls[0].Prompt, "into French") {
		t.Fatalf("prompt should name French: %q", stub.calls[0].Prompt)
	}
	if p.Options().TargetLanguage != "en" {
		t.Fatalf("configured target changed to %q", p.Options().TargetLanguage)
	}
}
