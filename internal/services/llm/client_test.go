package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func completionServer(t *testing.T, handler func(call int, w http.ResponseWriter, r *http.Request)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(int(calls.Add(1)), w, r)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func writeContent(w http.ResponseWriter, content string) {
	payload := map[string]any{
		"choices": []any{
			map[string]any{
				"finish_reason": "stop",
				"message":       map[string]any{"content": content},
			},
		},
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func testClient(url string, opts ...Option) *Client {
	opts = append([]Option{
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
	}, opts...)
	return NewClient(Config{APIKey: "test", BaseURL: url, Model: "demo-model", Title: "lyricsync"}, opts...)
}

func TestClientHealthCheck(t *testing.T) {
	server, _ := completionServer(t, func(_ int, w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("authorization header = %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "lyricsync" {
			t.Errorf("X-Title header = %q", got)
		}
		var body chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "demo-model" || body.ResponseFormat["type"] != "json_object" {
			t.Errorf("unexpected request body %+v", body)
		}
		writeContent(w, `{"ok":true}`)
	})
	if err := testClient(server.URL).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckCodeFence(t *testing.T) {
	server, _ := completionServer(t, func(_ int, w http.ResponseWriter, _ *http.Request) {
		writeContent(w, "```json\n{\"ok\":true}\n```")
	})
	if err := testClient(server.URL).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	server, calls := completionServer(t, func(_ int, w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	})
	err := testClient(server.URL, WithRetryMaxAttempts(4)).HealthCheck(context.Background())
	if err == nil {
		t.Fatal("expected health check to fail")
	}
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	server, calls := completionServer(t, func(call int, w http.ResponseWriter, _ *http.Request) {
		if call == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeContent(w, `{"lines":["hello"]}`)
	})
	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if content != `{"lines":["hello"]}` {
		t.Fatalf("unexpected content %q", content)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientRetriesOnEmptyContentThenSucceeds(t *testing.T) {
	server, calls := completionServer(t, func(call int, w http.ResponseWriter, _ *http.Request) {
		if call < 3 {
			writeContent(w, "")
			return
		}
		writeContent(w, `{"lines":[]}`)
	})
	if _, err := testClient(server.URL, WithRetryMaxAttempts(5)).CompleteJSON(context.Background(), "s", "u"); err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	server, calls := completionServer(t, func(_ int, w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := testClient(server.URL, WithRetryMaxAttempts(3)).CompleteJSON(context.Background(), "s", "u")
	if err == nil || !strings.Contains(err.Error(), "failed after 3 attempts") {
		t.Fatalf("expected exhausted retries error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestMaxRetriesConfiguresAttempts(t *testing.T) {
	client := NewClient(Config{APIKey: "k", MaxRetries: 4})
	if client.retryMaxAttempts != 5 {
		t.Fatalf("retryMaxAttempts = %d, want 5", client.retryMaxAttempts)
	}
	if client.cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("BaseURL = %q", client.cfg.BaseURL)
	}
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := client.CompleteJSON(context.Background(), "system", "user")
	if !errors.Is(err, ErrAPIKeyRequired) {
		t.Fatalf("expected ErrAPIKeyRequired, got %v", err)
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{name: "plain", content: `{"lines":["a","b"]}`, want: []string{"a", "b"}},
		{name: "fenced", content: "```json\n{\"lines\":[\"a\"]}\n```", want: []string{"a"}},
		{name: "prose", content: "Here you go: {\"lines\":[\"x\"]} hope it helps", want: []string{"x"}},
		{name: "empty", content: "  ", wantErr: true},
		{name: "garbage", content: "no json here", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var parsed struct {
				Lines []string `json:"lines"`
			}
			err := DecodeLLMJSON(tt.content, &parsed)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeLLMJSON: %v", err)
			}
			if strings.Join(parsed.Lines, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("lines = %v, want %v", parsed.Lines, tt.want)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("parseRetryAfter(3) = %v, %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative Retry-After should be ignored")
	}
	if _, ok := parseRetryAfter(""); ok {
		t.Fatal("empty Retry-After should be ignored")
	}
}
