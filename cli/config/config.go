package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents a flow.yaml configuration file.
// All values act as defaults for CLI flags; flags always override
// config values.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Adapter AdapterConfig `yaml:"adapter"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig holds credentials and endpoint settings.
type APIConfig struct {
	// BaseURL overrides the production endpoint (optional).
	BaseURL string `yaml:"base_url"`
	// Key is the team API key. Usually set via ${PD_API_KEY}.
	Key string `yaml:"key"`
	// UserID identifies the acting user within the team.
	UserID string `yaml:"user_id"`
	// Timeout is the per-request timeout for non-streaming calls.
	Timeout Duration `yaml:"timeout,omitempty"`
}

// SessionConfig holds defaults applied to new conversations.
type SessionConfig struct {
	Name           string `yaml:"name,omitempty"`
	OutputLanguage string `yaml:"output_language,omitempty"`
	JobMode        string `yaml:"job_mode,omitempty"`
	WithCitation   bool   `yaml:"with_citation,omitempty"`
}

// AdapterConfig configures the optional turn notification adapter.
type AdapterConfig struct {
	// Type selects the adapter: "webhook", "redis", or "" for none.
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `yaml:"level,omitempty"`
	// File receives structured logs; empty disables file logging.
	File string `yaml:"file,omitempty"`
}

// Validate checks the settings that have no workable zero value.
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return errors.New("config: api.key is required (set PD_API_KEY)")
	}
	if c.API.UserID == "" {
		return errors.New("config: api.user_id is required")
	}
	switch c.Adapter.Type {
	case "", "webhook", "redis":
	default:
		return fmt.Errorf("config: unknown adapter type %q", c.Adapter.Type)
	}
	if c.Adapter.Type != "" && c.Adapter.URL == "" {
		return fmt.Errorf("config: adapter.url is required for type %q", c.Adapter.Type)
	}
	return nil
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
