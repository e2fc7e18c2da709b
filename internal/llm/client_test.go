package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lazypower/council/internal/config"
)

func TestNewClientOllama(t *testing.T) {
	cfg := config.LLMConfig{Provider: "ollama", Model: "qwen2.5:7b-instruct"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, ok := client.(*Ollama); !ok {
		t.Errorf("expected *Ollama, got %T", client)
	}
}

func TestNewClientDefaultsToOllama(t *testing.T) {
	client, err := NewClient(config.LLMConfig{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	o, ok := client.(*Ollama)
	if !ok {
		t.Fatalf("expected *Ollama, got %T", client)
	}
	if o.model != "qwen2.5:7b-instruct" {
		t.Errorf("model = %q", o.model)
	}
}

func TestNewClientClaudeCLI(t *testing.T) {
	cfg := config.LLMConfig{Provider: "claude-cli", Model: "haiku"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, ok := client.(*ClaudeCLI); !ok {
		t.Errorf("expected *ClaudeCLI, got %T", client)
	}
}

func TestNewClientAnthropic(t *testing.T) {
	cfg := config.LLMConfig{Provider: "anthropic", AnthropicKey: "test-key", Model: "claude-haiku-4-5"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, ok := client.(*Anthropic); !ok {
		t.Errorf("expected *Anthropic, got %T", client)
	}
}

func TestNewClientAnthropicMissingKey(t *testing.T) {
	_, err := NewClient(config.LLMConfig{Provider: "anthropic"})
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNewClientOpenAI(t *testing.T) {
	cfg := config.LLMConfig{Provider: "openai", OpenAIKey: "sk-test"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	o, ok := client.(*OpenAI)
	if !ok {
		t.Fatalf("expected *OpenAI, got %T", client)
	}
	if o.model != "gpt-4o-mini" {
		t.Errorf("model = %q, want default", o.model)
	}
}

func TestNewClientOpenAIMissingKey(t *testing.T) {
	_, err := NewClient(config.LLMConfig{Provider: "openai"})
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNewClientDryRun(t *testing.T) {
	client, err := NewClient(config.LLMConfig{Provider: "dry-run"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := client.Complete(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "[]" {
		t.Errorf("content = %q, want []", resp.Content)
	}
}

func TestNewClientUnknown(t *testing.T) {
	_, err := NewClient(config.LLMConfig{Provider: "gpt"})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestSettingsFrom(t *testing.T) {
	s := settingsFrom(config.LLMConfig{Temperature: 0.9, MaxTokens: 64, Timeout: 5})
	if s.Temperature != 0.9 || s.MaxTokens != 64 || s.Timeout.Seconds() != 5 {
		t.Errorf("settings = %+v", s)
	}

	d := settingsFrom(config.LLMConfig{})
	if d != DefaultSettings() {
		t.Errorf("zero config should yield defaults, got %+v", d)
	}
}

func TestOllamaComplete(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"response":          `["a","b"]`,
			"prompt_eval_count": 10,
			"eval_count":        5,
		})
	}))
	defer ts.Close()

	o := NewOllama(ts.URL, "qwen2.5:7b-instruct", DefaultSettings())
	resp, err := o.Complete(context.Background(), "pick memories")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != `["a","b"]` {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.TokensUsed != 15 {
		t.Errorf("tokens = %d, want 15", resp.TokensUsed)
	}
	if got["model"] != "qwen2.5:7b-instruct" || got["prompt"] != "pick memories" || got["stream"] != false {
		t.Errorf("request body = %v", got)
	}
}

func TestOllamaCompleteStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer ts.Close()

	o := NewOllama(ts.URL, "missing", DefaultSettings())
	_, err := o.Complete(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v, want status code", err)
	}
}

func TestFilterEnv(t *testing.T) {
	env := []string{
		"HOME=/home/user",
		"CLAUDE_SESSION_ID=abc123",
		"CLAUDE_TRANSCRIPT=/tmp/t.jsonl",
		"PATH=/usr/bin",
	}
	filtered := filterEnv(env)
	if len(filtered) != 2 {
		t.Errorf("expected 2 vars, got %d: %v", len(filtered), filtered)
	}
	for _, e := range filtered {
		if strings.HasPrefix(e, "CLAUDE_") {
			t.Errorf("CLAUDE_ var not filtered: %s", e)
		}
	}
}

func TestMockClient(t *testing.T) {
	mock := &MockClient{
		Response: &Response{Content: "test response", Provider: "mock"},
	}

	resp, err := mock.Complete(context.Background(), "test prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "test response" {
		t.Errorf("content = %q, want %q", resp.Content, "test response")
	}
	if len(mock.Calls) != 1 {
		t.Errorf("expected 1 call, got %d", len(mock.Calls))
	}
	if mock.Calls[0] != "test prompt" {
		t.Errorf("call[0] = %q, want %q", mock.Calls[0], "test prompt")
	}
}

func TestMockClientQueue(t *testing.T) {
	mock := &MockClient{
		Responses: []string{"first", "second"},
		Err:       errors.New("exhausted"),
	}
	ctx := context.Background()

	for _, want := range []string{"first", "second"} {
		resp, err := mock.Complete(ctx, "p")
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if resp.Content != want {
			t.Errorf("content = %q, want %q", resp.Content, want)
		}
	}
	if _, err := mock.Complete(ctx, "p"); err == nil {
		t.Error("expected error once queue is exhausted")
	}
	if mock.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3", mock.CallCount())
	}
}

func TestMockClientHandler(t *testing.T) {
	mock := &MockClient{
		Responses: []string{"ignored"},
		Handler: func(prompt string) (*Response, error) {
			return &Response{Content: strings.ToUpper(prompt)}, nil
		},
	}
	resp, err := mock.Complete(context.Background(), "shout")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "SHOUT" {
		t.Errorf("content = %q, want SHOUT", resp.Content)
	}
}
