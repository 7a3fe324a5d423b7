package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)
	clearEnv(t)

	dir := t.TempDir()
	cfgDir := filepath.Join(dir, ".smith")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfgPath := filepath.Join(cfgDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("llm:\n  provider: openai\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(dir, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher error: %v", err)
	}
	w.debounceDur = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(cfgPath, []byte("llm:\n  provider: anthropic\n  api_key: k\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.LLM.Provider != "anthropic" {
			t.Errorf("reloaded provider = %q", cfg.LLM.Provider)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewWatcher error: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	w.Stop()
	w.Stop()
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	cfgDir := filepath.Join(dir, ".smith")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	fired := make(chan struct{}, 1)
	w, err := NewWatcher(dir, func(*Config) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher error: %v", err)
	}
	w.debounceDur = 50 * time.Millisecond

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(cfgDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case <-fired:
		t.Error("reload fired for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}
