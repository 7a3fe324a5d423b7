package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"codesmith/cmd/smith/ui"
	"codesmith/internal/artifact"
	"codesmith/internal/assistant"
	"codesmith/internal/config"
)

func TestFormatResultSuccess(t *testing.T) {
	result := &assistant.Result{
		Descriptor: &artifact.Descriptor{ID: "todo-app", Title: "Todo App"},
		Report: &artifact.Report{
			ScopeDir:      "todo-app",
			CreatedFiles:  []string{"main.go"},
			ModifiedFiles: []string{"go.mod"},
			CommandsRun:   []string{"go mod tidy"},
			Succeeded:     true,
		},
	}
	out := formatResult(result)
	if !strings.Contains(out, "Todo App") {
		t.Fatalf("expected title in output, got: %s", out)
	}
	if !strings.Contains(out, "todo-app/main.go") {
		t.Fatalf("expected scoped path, got: %s", out)
	}
	if !strings.Contains(out, "go mod tidy") {
		t.Fatalf("expected command listed, got: %s", out)
	}
	if !strings.Contains(out, "successfully") {
		t.Fatalf("expected success line, got: %s", out)
	}
}

func TestFormatResultFailureListsErrors(t *testing.T) {
	result := &assistant.Result{
		Descriptor: &artifact.Descriptor{ID: "api", Title: "API"},
		Report: &artifact.Report{
			ScopeDir:  "api",
			Errors:    []string{"command failed: make build"},
			Succeeded: false,
		},
	}
	out := formatResult(result)
	if !strings.Contains(out, "make build") {
		t.Fatalf("expected failing command in output, got: %s", out)
	}
	if strings.Contains(out, "successfully") {
		t.Fatalf("failure output should not claim success: %s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("short input should pass through, got: %s", got)
	}
	got := truncate(strings.Repeat("x", 50), 10)
	if !strings.HasSuffix(got, "...[truncated]") {
		t.Fatalf("expected truncation marker, got: %s", got)
	}
}

func TestConfigReloadSwapsPointerInUpdate(t *testing.T) {
	old := config.DefaultConfig()
	m := chatModel{cfg: old}

	next := config.DefaultConfig()
	next.LLM.Provider = "anthropic"

	updated, _ := m.Update(configReloadedMsg{cfg: next})
	got := updated.(chatModel)
	if got.cfg != next {
		t.Fatal("reload message should swap the config pointer")
	}
	if old.LLM.Provider != "openai" {
		t.Fatalf("prior config mutated: %q", old.LLM.Provider)
	}
}

func TestResizeKeepsLightRenderer(t *testing.T) {
	m := chatModel{
		cfg:    config.DefaultConfig(),
		styles: ui.NewStyles(ui.LightTheme()),
	}

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	got := updated.(chatModel)
	if got.renderer == nil {
		t.Fatal("resize should rebuild the renderer")
	}
	// Same construction path as initChat for the light theme.
	if newMarkdownRenderer(ui.LightTheme(), 92) == nil {
		t.Fatal("light renderer construction failed")
	}
}

func TestHelpTextListsCommands(t *testing.T) {
	out := helpText()
	for _, cmd := range []string{"/help", "/clear", "/status", "/config", "/quit"} {
		if !strings.Contains(out, cmd) {
			t.Fatalf("help missing %s: %s", cmd, out)
		}
	}
}
