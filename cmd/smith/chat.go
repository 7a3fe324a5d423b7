// This file implements the interactive chat interface using bubbletea.
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"codesmith/cmd/smith/ui"
	"codesmith/internal/artifact"
	"codesmith/internal/assistant"
	"codesmith/internal/config"
)

// chatMessage is one entry of the visible conversation.
type chatMessage struct {
	role    string // "user", "smith", "system"
	content string
}

type responseMsg string
type errorMsg error

// configReloadedMsg carries a hot-reloaded config into the Update loop so
// the model swaps it on the program goroutine, never from the watcher's.
type configReloadedMsg struct {
	cfg *config.Config
}

// chatModel is the main model for the interactive chat interface
type chatModel struct {
	// UI components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	// State
	history   []chatMessage
	isLoading bool
	err       error
	width     int
	height    int
	ready     bool

	// Backend
	cfg       *config.Config
	assistant *assistant.Assistant
	turnCount int
}

func initChat(cfg *config.Config, a *assistant.Assistant) chatModel {
	styles := ui.DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Describe what to build... (Enter to send, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	renderer := newMarkdownRenderer(styles.Theme, 80)

	return chatModel{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		history:   []chatMessage{},
		cfg:       cfg,
		assistant: a,
	}
}

// newMarkdownRenderer builds a glamour renderer for the active theme.
// Light terminals pin the light style; resizes must keep that choice.
func newMarkdownRenderer(theme ui.Theme, wrap int) *glamour.TermRenderer {
	if theme.IsDark {
		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		return r
	}
	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("light"),
		glamour.WithWordWrap(wrap),
	)
	return r
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if !m.isLoading {
				return m.handleSubmit()
			}
		}

		if !m.isLoading {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		footerHeight := 2
		inputHeight := 3

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight - inputHeight
		}

		m.textinput.Width = msg.Width - 4

		m.renderer = newMarkdownRenderer(m.styles.Theme, msg.Width-8)

	case spinner.TickMsg:
		if m.isLoading {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case responseMsg:
		m.isLoading = false
		m.err = nil
		m.turnCount++
		m.history = append(m.history, chatMessage{role: "smith", content: string(msg)})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case errorMsg:
		m.isLoading = false
		m.err = msg
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case configReloadedMsg:
		m.cfg = msg.cfg
		return m, nil
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m chatModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}

	m.textinput.Reset()

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.history = append(m.history, chatMessage{role: "user", content: input})
	m.isLoading = true
	m.err = nil
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()

	return m, tea.Batch(m.spinner.Tick, m.processInput(input))
}

func (m chatModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimPrefix(input, "/"))

	switch cmd {
	case "help":
		m.history = append(m.history, chatMessage{role: "system", content: helpText()})

	case "clear":
		m.assistant.ClearConversation()
		m.history = nil
		m.turnCount = 0
		m.err = nil

	case "status":
		m.history = append(m.history, chatMessage{role: "system", content: m.statusText()})

	case "config":
		m.history = append(m.history, chatMessage{role: "system", content: m.configText()})

	case "quit", "exit":
		return m, tea.Quit

	default:
		m.history = append(m.history, chatMessage{
			role:    "system",
			content: fmt.Sprintf("Unknown command: /%s (try /help)", cmd),
		})
	}

	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	return m, nil
}

func helpText() string {
	return strings.Join([]string{
		"**Commands**",
		"",
		"- `/help` - show this help",
		"- `/clear` - clear conversation history",
		"- `/status` - show project summary",
		"- `/config` - show active configuration",
		"- `/quit` - exit",
		"",
		"Anything else is treated as a requirement and materialized into the workspace.",
	}, "\n")
}

func (m chatModel) statusText() string {
	info, err := m.assistant.Project().Info()
	if err != nil {
		return fmt.Sprintf("No project metadata yet (%v)", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Project** %s v%s\n\n", info.Metadata.Name, info.Metadata.Version)
	fmt.Fprintf(&sb, "Tracked files: %d\n\n", len(info.TrackedFiles))
	if len(info.Metadata.Dependencies) > 0 {
		fmt.Fprintf(&sb, "Dependencies: %s\n\n", strings.Join(info.Metadata.Dependencies, ", "))
	}
	if len(info.RecentChanges) > 0 {
		sb.WriteString("Recent changes:\n")
		for _, c := range info.RecentChanges {
			fmt.Fprintf(&sb, "- %s `%s`\n", c.Operation, c.Path)
		}
	}
	return sb.String()
}

func (m chatModel) configText() string {
	return strings.Join([]string{
		"**Configuration**",
		"",
		fmt.Sprintf("- Workspace: `%s`", m.cfg.Workspace),
		fmt.Sprintf("- Provider: `%s`", m.cfg.LLM.Provider),
		fmt.Sprintf("- Model: `%s`", m.cfg.LLM.Model),
		fmt.Sprintf("- Timeout: `%s`", m.cfg.GetLLMTimeout()),
		fmt.Sprintf("- Session: `%s`", m.assistant.SessionID()),
	}, "\n")
}

func (m chatModel) processInput(input string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		result, err := m.assistant.ProcessRequest(ctx, input)
		if err != nil {
			if errors.Is(err, artifact.ErrDecode) && result != nil {
				return responseMsg(fmt.Sprintf(
					"The model response could not be decoded into a project descriptor.\n\n```\n%s\n```",
					truncate(result.Raw, 2000)))
			}
			return errorMsg(err)
		}

		return responseMsg(formatResult(result))
	}
}

func formatResult(result *assistant.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "**%s** (`%s`)\n\n", result.Descriptor.Title, result.Descriptor.ID)

	r := result.Report
	if len(r.CreatedFiles) > 0 {
		sb.WriteString("Created:\n")
		for _, f := range r.CreatedFiles {
			fmt.Fprintf(&sb, "- `%s/%s`\n", r.ScopeDir, f)
		}
		sb.WriteString("\n")
	}
	if len(r.ModifiedFiles) > 0 {
		sb.WriteString("Modified:\n")
		for _, f := range r.ModifiedFiles {
			fmt.Fprintf(&sb, "- `%s/%s`\n", r.ScopeDir, f)
		}
		sb.WriteString("\n")
	}
	if len(r.CommandsRun) > 0 {
		sb.WriteString("Commands:\n")
		for _, c := range r.CommandsRun {
			fmt.Fprintf(&sb, "- `%s`\n", c)
		}
		sb.WriteString("\n")
	}

	if r.Succeeded {
		sb.WriteString("✅ Project materialized successfully.")
	} else {
		sb.WriteString("❌ Execution stopped:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&sb, "- %s\n", e)
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "\n...[truncated]"
}

func (m chatModel) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		switch msg.role {
		case "user":
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.content))
		case "smith":
			agentStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(agentStyle.Render("smith") + "\n")
			sb.WriteString(m.styles.AgentResponse.Render(m.safeRenderMarkdown(msg.content)))
		default:
			sb.WriteString(m.styles.Muted.Render(m.safeRenderMarkdown(msg.content)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// safeRenderMarkdown renders markdown, falling back to plain text when
// the renderer is unavailable or panics on odd terminal state.
func (m chatModel) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	chatView := m.styles.Content.Render(m.viewport.View())

	if m.isLoading {
		chatView += "\n" + m.styles.Spinner.Render(m.spinner.View()) + " Forging..."
	}
	if m.err != nil {
		chatView += "\n" + m.styles.Error.Render("Error: "+m.err.Error())
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textinput.View())

	footer := m.styles.Muted.Render("Enter: send • /help: commands • Ctrl+C: exit")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m chatModel) renderHeader() string {
	title := m.styles.Header.Render(" 🔨 smith ")
	version := m.styles.Badge.Render("v" + m.cfg.Version)
	ws := m.styles.Muted.Render(fmt.Sprintf(" 📁 %s", m.cfg.Workspace))

	var status string
	if m.isLoading {
		status = m.styles.Warning.Render("● Working")
	} else {
		status = m.styles.Success.Render("● Ready")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		version,
		"  ",
		status,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		ws,
		m.styles.RenderDivider(m.width),
	)
}

func runInteractiveChat() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := assistant.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(
		initChat(cfg, a),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Hot-reload config edits while the chat is open. The fresh config is
	// handed to the Update loop as a message; the watcher goroutine never
	// touches model state directly.
	watcher, err := config.NewWatcher(cfg.Workspace, func(next *config.Config) {
		p.Send(configReloadedMsg{cfg: next})
	})
	if err == nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := watcher.Start(ctx); err == nil {
			defer watcher.Stop()
		}
	}

	_, err = p.Run()
	return err
}
