package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func completionPayload(content string) map[string]any {
	return map[string]any{
		"id":     "cmpl-test",
		"object": "chat.completion",
		"model":  "demo-model",
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 5,
			"total_tokens":      17,
		},
	}
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClientHealthCheck(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		_ = json.NewEncoder(w).Encode(completionPayload(`{"ok":true}`))
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckCodeFence(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completionPayload("```json\n{\"ok\":true}\n```"))
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckFailure(t *testing.T) {
	var calls int
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "unauthorized", "type": "auth"}})
	})

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"}, WithSleeper(func(time.Duration) {}))
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
	if calls != 1 {
		t.Fatalf("expected no retry on 401, got %d calls", calls)
	}
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "demo"})
	if _, _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected missing api key error")
	}
}

func TestCompleteJSONReportsUsage(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		format, _ := body["response_format"].(map[string]any)
		if format["type"] != "json_object" {
			t.Errorf("expected json_object response format, got %v", body["response_format"])
		}
		_ = json.NewEncoder(w).Encode(completionPayload(`{"verdict":"yes"}`))
	})

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	content, usage, err := client.CompleteJSON(context.Background(), "classify", "files")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if content != `{"verdict":"yes"}` {
		t.Fatalf("unexpected content %q", content)
	}
	if usage.Requests != 1 || usage.PromptTokens != 12 || usage.CompletionTokens != 5 {
		t.Fatalf("unexpected usage %+v", usage)
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "rate limited", "type": "rate_limit"}})
			return
		}
		_ = json.NewEncoder(w).Encode(completionPayload(`{"ok":true}`))
	})

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(time.Second, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientRetriesOnEmptyContentThenSucceeds(t *testing.T) {
	var calls int
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		content := ""
		if calls >= 3 {
			content = `{"ok":true}`
		}
		_ = json.NewEncoder(w).Encode(completionPayload(content))
	})

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(5),
	)
	_, usage, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if usage.Requests != 3 {
		t.Fatalf("expected usage for all three attempts, got %+v", usage)
	}
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "upstream", "type": "server"}})
	})

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithRetryBackoff(0, 0),
		WithRetryMaxAttempts(3),
	)
	_, _, err := client.CompleteJSON(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if status := httpStatus(err); status != http.StatusBadGateway {
		t.Fatalf("expected 502 status in error, got %d (%v)", status, err)
	}
}

func TestBackoffDelayDoublesAndCaps(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := client.backoffDelay(i + 1); got != expected {
			t.Fatalf("attempt %d: want %s got %s", i+1, expected, got)
		}
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	var out struct {
		Verdict string `json:"verdict"`
	}
	if err := DecodeLLMJSON("Sure! Here you go: {\"verdict\":\"maybe\"} hope it helps", &out); err != nil {
		t.Fatalf("DecodeLLMJSON returned error: %v", err)
	}
	if out.Verdict != "maybe" {
		t.Fatalf("unexpected verdict %q", out.Verdict)
	}
	if err := DecodeLLMJSON("   ", &out); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if err := DecodeLLMJSON("no json here", &out); err == nil || !strings.Contains(err.Error(), "no json here") {
		t.Fatalf("expected snippet in error, got %v", err)
	}
}
