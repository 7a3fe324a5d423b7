package producer

import (
	"context"
	"fmt"
	"strings"

	"codesmith/internal/logging"
)

// systemPrompt instructs the model to answer with a scaffolding descriptor.
const systemPrompt = `You are a project scaffolding assistant. Given a software requirement,
respond with ONLY a JSON document describing the project to create, using
this exact structure:

{
  "id": "kebab-case-project-id",
  "title": "Human readable title",
  "artifact": [
    {
      "id": "component-id",
      "type": "service|ui|library|docs",
      "name": "Component name",
      "actions": [
        {"type": "file", "filePath": "relative/path.ext", "content": "full file content"},
        {"type": "shell", "command": "a shell command to run"}
      ]
    }
  ]
}

Rules:
- Every filePath must be relative; never use absolute paths or "..".
- File actions carry the complete file content, not a diff.
- Shell actions run inside the project directory, in order.
- Emit file actions before the shell actions that depend on them.
- Respond with the JSON only, no prose before or after.`

// Turn is one prior exchange kept for conversational context.
type Turn struct {
	Role    string
	Content string
}

// Producer builds prompts and asks the backend for descriptors.
type Producer struct {
	client  LLMClient
	history []Turn
	maxHist int
}

// New creates a producer over an LLM client.
func New(client LLMClient) *Producer {
	return &Producer{client: client, maxHist: 10}
}

// Produce asks the backend for a scaffolding descriptor for the given
// requirement. Prior turns are folded into the prompt so follow-up
// requests can refine earlier output. The raw model text is returned;
// decoding is the caller's concern.
func (p *Producer) Produce(ctx context.Context, requirement string) (string, error) {
	if strings.TrimSpace(requirement) == "" {
		return "", fmt.Errorf("empty requirement")
	}

	prompt := p.buildPrompt(requirement)
	logging.ProducerDebug("Producing descriptor for requirement (%d chars, %d history turns)",
		len(requirement), len(p.history))

	timer := logging.StartTimer(logging.CategoryProducer, "produce")
	defer timer.Stop()

	response, err := p.client.CompleteWithSystem(ctx, systemPrompt, prompt)
	if err != nil {
		return "", err
	}

	p.remember(Turn{Role: "user", Content: requirement})
	p.remember(Turn{Role: "assistant", Content: response})
	return response, nil
}

// ClearHistory drops all remembered turns.
func (p *Producer) ClearHistory() {
	p.history = nil
}

// HistoryLen returns the number of remembered turns.
func (p *Producer) HistoryLen() int {
	return len(p.history)
}

func (p *Producer) buildPrompt(requirement string) string {
	if len(p.history) == 0 {
		return requirement
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, t := range p.history {
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nNew requirement: ")
	b.WriteString(requirement)
	return b.String()
}

func (p *Producer) remember(t Turn) {
	p.history = append(p.history, t)
	if len(p.history) > p.maxHist {
		p.history = p.history[len(p.history)-p.maxHist:]
	}
}
