package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all council configuration.
type Config struct {
	Debug      bool             `toml:"debug"`
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	LLM        LLMConfig        `toml:"llm"`
	Council    CouncilConfig    `toml:"council"`
	Directives DirectivesConfig `toml:"directives"`
	Advisors   []AdvisorConfig  `toml:"advisors"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"` // empty resolves to ~/.council/council.db
}

type LLMConfig struct {
	Provider      string  `toml:"provider"` // "ollama", "anthropic", "openai", "claude-cli", "mock"
	Model         string  `toml:"model"`
	OllamaURL     string  `toml:"ollama_url"`
	AnthropicKey  string  `toml:"anthropic_key"`
	OpenAIKey     string  `toml:"openai_key"`
	OpenAIBaseURL string  `toml:"openai_base_url"`
	Temperature   float64 `toml:"temperature"`
	MaxTokens     int     `toml:"max_tokens"`
	Timeout       int     `toml:"timeout"` // seconds
}

type CouncilConfig struct {
	ParallelConsult   bool    `toml:"parallel_consult"`
	RetainedDecayRate float64 `toml:"retained_decay_rate"`
	RetainedStrength  float64 `toml:"retained_strength"`
}

// DirectivesConfig overrides the built-in directive text per step.
// Each template must contain the {payload} placeholder.
type DirectivesConfig struct {
	SelectMemories  string `toml:"select_memories"`
	Consult         string `toml:"consult"`
	KeepMemory      string `toml:"keep_memory"`
	SummarizeMemory string `toml:"summarize_memory"`
	SelectAdvisors  string `toml:"select_advisors"`
	Decide          string `toml:"decide"`
}

// AdvisorConfig declares one advisor. Either Personality or the structured
// motive/fear/strategy/blind_spot fields are set.
type AdvisorConfig struct {
	Name        string         `toml:"name"`
	Personality string         `toml:"personality"`
	Motive      string         `toml:"motive"`
	Fear        string         `toml:"fear"`
	Strategy    string         `toml:"strategy"`
	BlindSpot   string         `toml:"blind_spot"`
	Memories    []MemoryConfig `toml:"memories"`
}

// Structured reports whether the advisor uses the four-field personality.
func (a AdvisorConfig) Structured() bool {
	return a.Personality == "" && (a.Motive != "" || a.Fear != "" || a.Strategy != "" || a.BlindSpot != "")
}

type MemoryConfig struct {
	Statement string  `toml:"statement"`
	DecayRate float64 `toml:"decay_rate"`
	Strength  float64 `toml:"strength"` // 0 means 1
}

// InitialStrength returns Strength, defaulting to 1 when unset.
func (m MemoryConfig) InitialStrength() float64 {
	if m.Strength == 0 {
		return 1
	}
	return m.Strength
}

// Default returns a Config with sensible defaults and the built-in council.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       "qwen2.5:7b-instruct",
			OllamaURL:   "http://localhost:11434",
			Temperature: 0.3,
			MaxTokens:   1024,
			Timeout:     120,
		},
		Council: CouncilConfig{
			RetainedDecayRate: 0.01,
			RetainedStrength:  1,
		},
		Advisors: DefaultAdvisors(),
	}
}

// DefaultPath returns ~/.council/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".council", "config.toml"), nil
}

// Load reads the TOML file at path over the defaults. A missing file yields
// Default(). A file without [[advisors]] keeps the built-in council.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	defaults := cfg.Advisors
	cfg.Advisors = nil
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Default(), fmt.Errorf("decode config %s: %w", path, err)
	}
	if len(cfg.Advisors) == 0 {
		cfg.Advisors = defaults
	}
	return cfg, cfg.Validate()
}

// ApplyEnv loads a .env file if present and applies environment overrides.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.AnthropicKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.OpenAIKey = key
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		c.LLM.OpenAIBaseURL = url
	}
	if url := os.Getenv("OLLAMA_URL"); url != "" {
		c.LLM.OllamaURL = url
	}
	if p := os.Getenv("COUNCIL_LLM_PROVIDER"); p != "" {
		c.LLM.Provider = p
	}
	if m := os.Getenv("COUNCIL_MODEL"); m != "" {
		c.LLM.Model = m
	}
	if db := os.Getenv("COUNCIL_DB"); db != "" {
		c.Database.Path = db
	}
	if v := os.Getenv("COUNCIL_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

// Validate checks advisor declarations for obvious mistakes.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Advisors))
	for i, a := range c.Advisors {
		if a.Personality == "" && !a.Structured() {
			return fmt.Errorf("advisor %d (%q): personality required", i, a.Name)
		}
		if a.Name != "" {
			if seen[a.Name] {
				return fmt.Errorf("advisor %q declared twice", a.Name)
			}
			seen[a.Name] = true
		}
		for j, m := range a.Memories {
			if m.Statement == "" {
				return fmt.Errorf("advisor %q memory %d: empty statement", a.Name, j)
			}
			if m.DecayRate < 0 {
				return fmt.Errorf("advisor %q memory %d: negative decay_rate", a.Name, j)
			}
		}
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
