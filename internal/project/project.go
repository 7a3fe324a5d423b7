package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codesmith/internal/logging"
	"codesmith/internal/workspace"
)

// ErrNoMetadata is returned when an operation needs a created or loaded
// project and there is none.
var ErrNoMetadata = errors.New("project has no metadata")

// Info is the summary view of a project: its metadata plus the derived
// ledger state.
type Info struct {
	Metadata      Metadata     `json:"metadata"`
	TrackedFiles  []string     `json:"tracked_files"`
	RecentChanges []FileChange `json:"recent_changes"`
}

// Project ties together a workspace, its change ledger, and its metadata.
type Project struct {
	Store    *workspace.Store
	Ledger   *Ledger
	Metadata *Metadata
}

// Open binds to a workspace directory and loads whatever ledger history
// is already there. Metadata is loaded separately via Load or created
// via Create.
func Open(dir string) (*Project, error) {
	store, err := workspace.NewStore(dir)
	if err != nil {
		return nil, err
	}
	return &Project{
		Store:  store,
		Ledger: NewLedger(store),
	}, nil
}

// Create initializes metadata for a new project and persists it.
func (p *Project) Create(name, description string) error {
	p.Metadata = NewMetadata(name, description)
	if err := p.saveMetadata(); err != nil {
		return err
	}
	logging.Ledger("Created project: %s", name)
	return nil
}

// Load reads persisted metadata. A workspace without metadata yields
// ErrNoMetadata.
func (p *Project) Load() error {
	raw, ok, err := p.Store.ReadFile(MetadataFile)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoMetadata, p.Store.Root())
	}

	var meta Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	p.Metadata = &meta
	logging.LedgerDebug("Loaded project: %s", meta.Name)
	return nil
}

// Save persists metadata, bumping the updated timestamp.
func (p *Project) Save() error {
	if p.Metadata == nil {
		return ErrNoMetadata
	}
	p.Metadata.UpdatedAt = time.Now()
	return p.saveMetadata()
}

// UpdateDependencies unions deps into the metadata and persists.
func (p *Project) UpdateDependencies(deps []string) error {
	if p.Metadata == nil {
		return ErrNoMetadata
	}
	p.Metadata.MergeDependencies(deps)
	return p.saveMetadata()
}

// Info returns the project summary with the five most recent changes.
func (p *Project) Info() (*Info, error) {
	if p.Metadata == nil {
		return nil, ErrNoMetadata
	}
	return &Info{
		Metadata:      *p.Metadata,
		TrackedFiles:  p.Ledger.TrackedFiles(),
		RecentChanges: p.Ledger.Recent(5),
	}, nil
}

// Export copies every tracked file into outputDir and writes a
// project_info.json summary beside them. Tracked files that no longer
// exist on disk are skipped.
func (p *Project) Export(outputDir string) error {
	info, err := p.Info()
	if err != nil {
		return err
	}

	out, err := workspace.NewStore(outputDir)
	if err != nil {
		return err
	}

	exported := 0
	for _, path := range info.TrackedFiles {
		content, ok, err := p.Store.ReadFile(path)
		if err != nil {
			return err
		}
		if !ok {
			logging.LedgerDebug("Export skipping missing file: %s", path)
			continue
		}
		if err := out.CreateFile(path, content); err != nil {
			return err
		}
		exported++
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project info: %w", err)
	}
	if err := out.CreateFile("project_info.json", string(data)); err != nil {
		return err
	}

	logging.Ledger("Exported project %s: %d files -> %s", info.Metadata.Name, exported, outputDir)
	return nil
}

func (p *Project) saveMetadata() error {
	data, err := json.MarshalIndent(p.Metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return p.Store.CreateFile(MetadataFile, string(data))
}
