package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file searched for when no --config flag
// is given.
const DefaultFileName = "flow.yaml"

// Load reads a YAML config file, expands environment variables, and
// unmarshals into a Config struct.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	expanded := ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadDefault loads flow.yaml from the working directory or the user
// config directory, falling back to environment-only defaults when no
// file exists.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat(DefaultFileName); err == nil {
		return Load(DefaultFileName)
	}

	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, "flow", DefaultFileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cannot stat config file %q: %w", path, err)
		}
	}

	return &Config{
		API: APIConfig{
			Key:    os.Getenv("PD_API_KEY"),
			UserID: os.Getenv("PD_USER_ID"),
		},
	}, nil
}
