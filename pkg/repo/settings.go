package repo

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/odvcencio/prose/pkg/llm"
)

// Settings holds tool options read from .prose/settings.toml.
type Settings struct {
	LLM LLMSettings `toml:"llm"`
}

// LLMSettings selects and tunes the text-generation endpoint.
type LLMSettings struct {
	Model       string   `toml:"model"`
	BaseURL     string   `toml:"base_url"`
	APIKeyEnv   string   `toml:"api_key_env"`
	Attempts    int      `toml:"attempts"`
	RetryDelay  Duration `toml:"retry_delay"`
	Temperature float32  `toml:"temperature"`
}

// Duration is a time.Duration written as a string such as "1s" or "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative duration %s", v)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Environment variables that override settings.toml.
const (
	EnvModel   = "OPENAI_MODEL"
	EnvBaseURL = "OPENAI_BASE_URL"
)

// DefaultSettings returns the settings used when settings.toml is absent.
func DefaultSettings() *Settings {
	return &Settings{LLM: LLMSettings{
		Model:      "gpt-4o-mini",
		APIKeyEnv:  "OPENAI_API_KEY",
		Attempts:   llm.DefaultAttempts,
		RetryDelay: Duration{llm.DefaultDelay},
	}}
}

func (r *Repo) settingsPath() string {
	return filepath.Join(r.ProseDir, "settings.toml")
}

// ReadSettings decodes .prose/settings.toml over the defaults and applies
// environment overrides. Unknown keys are logged and otherwise ignored.
func (r *Repo) ReadSettings() (*Settings, error) {
	s := DefaultSettings()
	md, err := toml.DecodeFile(r.settingsPath(), s)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		for _, key := range md.Undecoded() {
			r.logger().Warn("unknown settings key", "key", key.String())
		}
	}

	if v := os.Getenv(EnvModel); v != "" {
		s.LLM.Model = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		s.LLM.BaseURL = v
	}
	if s.LLM.APIKeyEnv == "" {
		s.LLM.APIKeyEnv = DefaultSettings().LLM.APIKeyEnv
	}
	return s, nil
}

// OpenAIConfig returns the client configuration, reading the API key from
// the configured environment variable.
func (s *Settings) OpenAIConfig() llm.OpenAIConfig {
	return llm.OpenAIConfig{
		APIKey:      os.Getenv(s.LLM.APIKeyEnv),
		Model:       s.LLM.Model,
		BaseURL:     s.LLM.BaseURL,
		Temperature: s.LLM.Temperature,
	}
}

// GeneratorOptions returns the retry policy for llm.NewGenerator.
func (s *Settings) GeneratorOptions(logger *slog.Logger) llm.Options {
	return llm.Options{
		Attempts: s.LLM.Attempts,
		Delay:    s.LLM.RetryDelay.Duration,
		Logger:   logger,
	}
}
