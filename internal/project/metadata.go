package project

import (
	"sort"
	"time"
)

// MetadataFile is where project metadata persists, relative to the
// workspace root.
const MetadataFile = ".smith/metadata.json"

// Metadata describes the project living in a workspace.
type Metadata struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      string    `json:"version"`
	Language     string    `json:"language"`
	Dependencies []string  `json:"dependencies"`
	Tags         []string  `json:"tags"`
}

// NewMetadata creates metadata for a fresh project with default version
// and language.
func NewMetadata(name, description string) *Metadata {
	now := time.Now()
	return &Metadata{
		Name:         name,
		Description:  description,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      "0.1.0",
		Language:     "go",
		Dependencies: []string{},
		Tags:         []string{},
	}
}

// MergeDependencies unions new dependencies into the existing set.
// Dependencies only accumulate; nothing is ever removed here. The list
// stays sorted and duplicate-free.
func (m *Metadata) MergeDependencies(deps []string) {
	seen := make(map[string]bool, len(m.Dependencies)+len(deps))
	for _, d := range m.Dependencies {
		seen[d] = true
	}
	for _, d := range deps {
		if d != "" {
			seen[d] = true
		}
	}

	merged := make([]string, 0, len(seen))
	for d := range seen {
		merged = append(merged, d)
	}
	sort.Strings(merged)
	m.Dependencies = merged
}
