package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// resetState clears package state between tests (the package is global by design).
func resetState() {
	CloseAll()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	workspace = ""
	config = loggingConfig{}
}

func writeTestConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".smith")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestCategoriesLogWhenDebugEnabled(t *testing.T) {
	tempDir := t.TempDir()

	writeTestConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: true
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	Workspace("test workspace message")
	Artifact("test artifact message")
	LedgerDebug("test ledger debug")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(tempDir, ".smith", "logs"))
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}

	found := map[string]bool{}
	for _, e := range entries {
		for _, cat := range []string{"workspace", "artifact", "ledger"} {
			if strings.Contains(e.Name(), cat) {
				found[cat] = true
			}
		}
	}
	for _, cat := range []string{"workspace", "artifact", "ledger"} {
		if !found[cat] {
			t.Errorf("Expected a log file for category %q", cat)
		}
	}
}

func TestNoLogsWithoutDebugMode(t *testing.T) {
	tempDir := t.TempDir()

	// No config file at all: production mode, no logs directory.
	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if IsDebugMode() {
		t.Error("Expected debug mode to be disabled without config")
	}

	Workspace("this should go nowhere")

	if _, err := os.Stat(filepath.Join(tempDir, ".smith", "logs")); !os.IsNotExist(err) {
		t.Error("Expected no logs directory in production mode")
	}
}

func TestCategoryFilter(t *testing.T) {
	tempDir := t.TempDir()

	writeTestConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: true
  categories:
    workspace: true
    runner: false
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if !IsCategoryEnabled(CategoryWorkspace) {
		t.Error("workspace category should be enabled")
	}
	if IsCategoryEnabled(CategoryRunner) {
		t.Error("runner category should be disabled")
	}
	// Unlisted categories default to enabled in debug mode.
	if !IsCategoryEnabled(CategorySession) {
		t.Error("unlisted category should default to enabled")
	}
	CloseAll()
}

func TestTimerLogsDuration(t *testing.T) {
	tempDir := t.TempDir()

	writeTestConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: true
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	timer := StartTimer(CategoryArtifact, "materialize")
	time.Sleep(10 * time.Millisecond)
	elapsed := timer.Stop()
	CloseAll()

	if elapsed < 10*time.Millisecond {
		t.Errorf("elapsed = %v, want at least the slept duration", elapsed)
	}

	entries, err := os.ReadDir(filepath.Join(tempDir, ".smith", "logs"))
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}
	var logged bool
	for _, e := range entries {
		if !strings.Contains(e.Name(), "artifact") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(tempDir, ".smith", "logs", e.Name()))
		if err != nil {
			t.Fatalf("Failed to read log: %v", err)
		}
		if strings.Contains(string(data), "materialize completed in") {
			logged = true
		}
	}
	if !logged {
		t.Error("Expected timer completion line in artifact log")
	}
}

func TestReloadConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeTestConfig(t, tempDir, `
logging:
  level: info
  debug_mode: false
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if IsDebugMode() {
		t.Error("debug mode should start disabled")
	}

	writeTestConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: true
`)
	if err := ReloadConfig(); err != nil {
		t.Fatalf("ReloadConfig error: %v", err)
	}
	if !IsDebugMode() {
		t.Error("debug mode should be enabled after reload")
	}
	CloseAll()
}
