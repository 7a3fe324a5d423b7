// Package artifact decodes and executes scaffolding descriptors produced
// by the language model. A descriptor is a JSON document listing
// sub-projects, each carrying an ordered list of file and shell actions.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"codesmith/internal/workspace"
)

// Action types recognized in a descriptor.
const (
	ActionFile  = "file"
	ActionShell = "shell"
)

// ErrDecode wraps any failure to turn model output into a valid Descriptor.
var ErrDecode = errors.New("invalid artifact descriptor")

// Action is a single step of a sub-project: either a file to write or a
// shell command to run.
type Action struct {
	Type     string `json:"type"`
	FilePath string `json:"filePath,omitempty"`
	Content  string `json:"content,omitempty"`
	Command  string `json:"command,omitempty"`
}

// SubProject groups the actions for one component of a descriptor.
type SubProject struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Name    string   `json:"name"`
	Actions []Action `json:"actions"`
}

// Descriptor is the top-level scaffolding plan. ID doubles as the name of
// the execution-scope directory everything is materialized under.
type Descriptor struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	SubProjects []SubProject `json:"artifact"`

	// Requirements lists package dependencies the scaffolded project
	// needs; they accumulate into project metadata.
	Requirements []string `json:"requirements,omitempty"`
}

// StripFence removes a surrounding markdown code fence, with or without a
// language tag, leaving bare JSON. Input without a fence passes through
// unchanged apart from whitespace trimming.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (```json, ```JSON, or bare ```).
		s = s[idx+1:]
	} else {
		return strings.TrimSpace(s)
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Decode parses model output into a Descriptor. The raw text may be fenced.
// Decoding is fail-closed: a descriptor with a missing id, an unknown action
// type, or a file path that would land outside the workspace is rejected
// whole, before any action runs.
func Decode(raw string) (*Descriptor, error) {
	text := StripFence(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrDecode)
	}

	var desc Descriptor
	if err := json.Unmarshal([]byte(text), &desc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if err := desc.validate(); err != nil {
		return nil, err
	}
	return &desc, nil
}

func (d *Descriptor) validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: missing descriptor id", ErrDecode)
	}
	if !workspace.Inside(d.ID) {
		return fmt.Errorf("%w: descriptor id escapes workspace: %s", ErrDecode, d.ID)
	}
	if len(d.SubProjects) == 0 {
		return fmt.Errorf("%w: descriptor %s has no sub-projects", ErrDecode, d.ID)
	}

	for i, sp := range d.SubProjects {
		if strings.TrimSpace(sp.ID) == "" {
			return fmt.Errorf("%w: sub-project %d has no id", ErrDecode, i)
		}
		for j, a := range sp.Actions {
			switch a.Type {
			case ActionFile:
				if strings.TrimSpace(a.FilePath) == "" {
					return fmt.Errorf("%w: %s action %d has no filePath", ErrDecode, sp.ID, j)
				}
				if !workspace.Inside(a.FilePath) {
					return fmt.Errorf("%w: %s action %d path escapes workspace: %s", ErrDecode, sp.ID, j, a.FilePath)
				}
			case ActionShell:
				if strings.TrimSpace(a.Command) == "" {
					return fmt.Errorf("%w: %s action %d has no command", ErrDecode, sp.ID, j)
				}
			default:
				return fmt.Errorf("%w: %s action %d has unknown type %q", ErrDecode, sp.ID, j, a.Type)
			}
		}
	}
	return nil
}

// FileCount returns the number of file actions across all sub-projects.
func (d *Descriptor) FileCount() int {
	n := 0
	for _, sp := range d.SubProjects {
		for _, a := range sp.Actions {
			if a.Type == ActionFile {
				n++
			}
		}
	}
	return n
}
