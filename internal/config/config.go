// Package config loads and persists smith configuration from
// .smith/config.yaml inside the workspace.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config path relative to the workspace root.
const FileName = ".smith/config.yaml"

// Config holds all smith configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Workspace directory all file operations are scoped to
	Workspace string `yaml:"workspace"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Shell execution settings
	Execution ExecutionConfig `yaml:"execution"`

	// Session history storage
	Session SessionConfig `yaml:"session"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the scaffolding producer backend.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, anthropic, gemini
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Timeout     string  `yaml:"timeout"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// ExecutionConfig configures shell action execution.
type ExecutionConfig struct {
	DefaultTimeout string `yaml:"default_timeout"`
}

// SessionConfig configures conversation history storage.
type SessionConfig struct {
	DatabasePath string `yaml:"database_path"`
	MaxTurns     int    `yaml:"max_turns"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"` // debug, info, warn, error
}

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{"openai", "anthropic", "gemini"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "smith",
		Version: "0.1.0",

		Workspace: "workspace",

		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			BaseURL:     "https://api.openai.com/v1",
			Timeout:     "120s",
			MaxTokens:   4096,
			Temperature: 0.7,
		},

		Execution: ExecutionConfig{
			DefaultTimeout: "60s",
		},

		Session: SessionConfig{
			DatabasePath: ".smith/sessions.db",
			MaxTurns:     50,
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults
// when the file is missing. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadWorkspace loads configuration from the standard location inside a
// workspace directory.
func LoadWorkspace(workspaceDir string) (*Config, error) {
	return Load(filepath.Join(workspaceDir, filepath.FromSlash(FileName)))
}

// Save writes configuration to a YAML file, creating parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. The env key
// matching the configured provider wins; a key for another provider never
// flips an explicit provider choice. Only when no key is configured at all
// does the first available key select its provider, so env-only setups
// still work.
func (c *Config) applyEnvOverrides() {
	envKeys := map[string]string{
		"openai":    os.Getenv("OPENAI_API_KEY"),
		"anthropic": os.Getenv("ANTHROPIC_API_KEY"),
		"gemini":    os.Getenv("GEMINI_API_KEY"),
	}
	if key := envKeys[c.LLM.Provider]; key != "" {
		c.LLM.APIKey = key
	} else if c.LLM.APIKey == "" {
		for _, provider := range ValidProviders {
			if envKeys[provider] != "" {
				c.LLM.Provider = provider
				c.LLM.APIKey = envKeys[provider]
				break
			}
		}
	}

	if ws := os.Getenv("SMITH_WORKSPACE"); ws != "" {
		c.Workspace = ws
	}
	if model := os.Getenv("SMITH_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if path := os.Getenv("SMITH_DB"); path != "" {
		c.Session.DatabasePath = path
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetExecutionTimeout returns the shell action timeout as a duration.
func (c *Config) GetExecutionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Execution.DefaultTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	valid := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown LLM provider: %s", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("no API key configured for provider %s", c.LLM.Provider)
	}
	if c.Workspace == "" {
		return fmt.Errorf("workspace directory not configured")
	}
	return nil
}
