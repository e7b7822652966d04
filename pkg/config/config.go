// Package config loads and persists the copilot configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the copilot configuration.
type Config struct {
	// Gemini holds the translation backend settings.
	Gemini GeminiConfig `yaml:"gemini"`

	// Database is the path to the CCTNS SQLite database.
	Database string `yaml:"database,omitempty"`

	// Language is the default input language code: "en", "te" or "hi".
	Language string `yaml:"language,omitempty"`

	// Speech holds the speech-to-text settings.
	Speech SpeechConfig `yaml:"speech,omitempty"`

	// Theme selects the chat color theme: "dark" or "light".
	Theme string `yaml:"theme,omitempty"`
}

// GeminiConfig holds the settings for the Gemini translation backend.
type GeminiConfig struct {
	// APIKey is the Gemini API key. The GEMINI_API_KEY environment
	// variable takes precedence over this value.
	APIKey string `yaml:"api_key,omitempty"`

	// Model is the Gemini model name.
	Model string `yaml:"model,omitempty"`
}

// SpeechConfig holds the speech-to-text settings.
type SpeechConfig struct {
	// Command is the external transcriber command, with optional
	// arguments. The language code is appended as the final argument.
	Command string `yaml:"command,omitempty"`

	Args []string `yaml:"args,omitempty"`
}

// Default values applied when the config file omits a field.
const (
	DefaultModel    = "gemini-2.0-flash"
	DefaultLanguage = "en"
	DefaultTheme    = "dark"
)

// configFilePath returns the path to the config file, honoring
// XDG_CONFIG_HOME.
func configFilePath() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "cctns-copilot", "config.yml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "cctns-copilot", "config.yml"), nil
}

// Load reads the config file, falling back to defaults when the file or
// individual fields are missing.
func Load() (*Config, error) {
	path, err := configFilePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// Missing file is fine, run on defaults
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// Save writes the config to the config file, creating the directory if
// needed.
func Save(cfg *Config) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to an explicit path.
func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultModel
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
}

func (c *Config) applyEnv() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
}
