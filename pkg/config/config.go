// Package config loads wayline settings from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all wayline settings. A missing config file is fine —
// every field has a usable default for a local Ollama-compatible
// endpoint.
type Config struct {
	// Model is the model name requested from the endpoint.
	Model string `yaml:"model"`

	// BaseURL is the OpenAI-compatible API root
	// (e.g. "http://localhost:11434/v1" for Ollama).
	BaseURL string `yaml:"base_url"`

	// APIKey is the bearer token sent to the endpoint. Local endpoints
	// ignore it but the client requires a value.
	APIKey string `yaml:"api_key"`

	// APIKeyFile is a path to a file whose trimmed content replaces
	// APIKey during Load.
	APIKeyFile string `yaml:"api_key_file"`

	// StorePath is the goals store file (default <data-dir>/goals.json).
	StorePath string `yaml:"store_path"`

	// TimeoutSeconds bounds each request to the endpoint (default 120).
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the per-request deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = "llama3.2"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434/v1"
	}
	if c.APIKey == "" {
		c.APIKey = "wayline"
	}
	if c.StorePath == "" {
		c.StorePath = filepath.Join(DefaultDataDir(), "goals.json")
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 120
	}
}

// DefaultPath returns the config file location: $WAYLINE_CONFIG if set,
// otherwise <data-dir>/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("WAYLINE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// Load reads a config YAML file. A missing file yields the defaults;
// a file that exists but does not parse is an error. If APIKeyFile is
// set, the file is read and its trimmed content becomes APIKey.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.APIKeyFile != "" {
		key, err := os.ReadFile(cfg.APIKeyFile)
		if err != nil {
			return Config{}, fmt.Errorf("reading api key file %s: %w", cfg.APIKeyFile, err)
		}
		cfg.APIKey = strings.TrimSpace(string(key))
	}

	cfg.applyDefaults()
	return cfg, nil
}
