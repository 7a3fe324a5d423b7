package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Env overrides touch process state, so these tests do not run in parallel.

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
		"SMITH_WORKSPACE", "SMITH_MODEL", "SMITH_DB",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Name != "smith" {
		t.Errorf("name = %q", cfg.Name)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("provider = %q", cfg.LLM.Provider)
	}
	if cfg.Session.DatabasePath != ".smith/sessions.db" {
		t.Errorf("database path = %q", cfg.Session.DatabasePath)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := strings.Join([]string{
		"llm:",
		"  provider: anthropic",
		"  model: claude-sonnet-4-20250514",
		"  timeout: 30s",
		"logging:",
		"  debug_mode: true",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("provider = %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if got := cfg.GetLLMTimeout(); got != 30*time.Second {
		t.Errorf("timeout = %v", got)
	}
	if !cfg.Logging.DebugMode {
		t.Error("debug_mode not applied")
	}
	// Untouched sections keep defaults.
	if cfg.Execution.DefaultTimeout != "60s" {
		t.Errorf("execution timeout = %q", cfg.Execution.DefaultTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SMITH_WORKSPACE", "/tmp/ws")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.APIKey != "test-key" {
		t.Errorf("provider/key = %q/%q", cfg.LLM.Provider, cfg.LLM.APIKey)
	}
	if cfg.Workspace != "/tmp/ws" {
		t.Errorf("workspace = %q", cfg.Workspace)
	}
}

func TestLoad_EnvKeyForOtherProviderDoesNotFlipProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("GEMINI_API_KEY", "gm-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := strings.Join([]string{
		"llm:",
		"  provider: anthropic",
		"  api_key: file-key",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("provider = %q, want configured provider kept", cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Errorf("api key = %q, want file value kept", cfg.LLM.APIKey)
	}

	// The matching provider's env key still overrides the file.
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.APIKey != "ant-key" {
		t.Errorf("provider/key = %q/%q, want anthropic/ant-key", cfg.LLM.Provider, cfg.LLM.APIKey)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()
	cfg.LLM.Model = "custom-model"
	cfg.Logging.Categories = map[string]bool{"workspace": true}

	path := filepath.Join(t.TempDir(), ".smith", "config.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.LLM.Model != "custom-model" {
		t.Errorf("model = %q", got.LLM.Model)
	}
	if !got.Logging.Categories["workspace"] {
		t.Error("categories not round-tripped")
	}
}

func TestGetTimeouts_BadValuesFallBack(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()
	cfg.LLM.Timeout = "not-a-duration"
	cfg.Execution.DefaultTimeout = ""

	if got := cfg.GetLLMTimeout(); got != 120*time.Second {
		t.Errorf("LLM timeout fallback = %v", got)
	}
	if got := cfg.GetExecutionTimeout(); got != 60*time.Second {
		t.Errorf("execution timeout fallback = %v", got)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error with no API key")
	}

	cfg.LLM.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.LLM.Provider = "mystery"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}
}
