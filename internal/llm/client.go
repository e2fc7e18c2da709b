package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/lazypower/council/internal/config"
)

// Client is the interface for LLM providers. The model is bound when the
// client is constructed.
type Client interface {
	Complete(ctx context.Context, prompt string) (*Response, error)
}

// Response holds the result of an LLM completion.
type Response struct {
	Content    string
	Provider   string
	TokensUsed int
}

// Settings are the sampling and transport knobs shared by every provider.
type Settings struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultSettings mirrors config.Default().LLM.
func DefaultSettings() Settings {
	return Settings{
		Temperature: 0.3,
		MaxTokens:   1024,
		Timeout:     120 * time.Second,
	}
}

func settingsFrom(cfg config.LLMConfig) Settings {
	s := DefaultSettings()
	if cfg.Temperature > 0 {
		s.Temperature = cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		s.MaxTokens = cfg.MaxTokens
	}
	if cfg.Timeout > 0 {
		s.Timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return s
}

// NewClient creates an LLM client based on the config provider setting.
func NewClient(cfg config.LLMConfig) (Client, error) {
	settings := settingsFrom(cfg)

	switch cfg.Provider {
	case "ollama", "":
		url := cfg.OllamaURL
		if url == "" {
			url = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = "qwen2.5:7b-instruct"
		}
		return NewOllama(url, model, settings), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY or config")
		}
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5"
		}
		return NewAnthropic(cfg.AnthropicKey, model, settings), nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY or config")
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, model, settings), nil
	case "claude-cli":
		model := cfg.Model
		if model == "" {
			model = "haiku"
		}
		return NewClaudeCLI(model, settings), nil
	case "mock", "dry-run":
		return NewDryRun(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
