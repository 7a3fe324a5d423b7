package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"codesmith/internal/project"
	"codesmith/internal/session"
)

// resolveDBPath anchors a relative session database path at the
// workspace root.
func resolveDBPath(proj *project.Project, dbPath string) string {
	if filepath.IsAbs(dbPath) {
		return dbPath
	}
	return filepath.Join(proj.Store.Root(), filepath.FromSlash(dbPath))
}

// statusCmd summarizes the project and recent sessions.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show project metadata, tracked files, and recent sessions",
	RunE:  showStatus,
}

func showStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	proj, err := project.Open(cfg.Workspace)
	if err != nil {
		return err
	}
	if err := proj.Load(); err != nil {
		if errors.Is(err, project.ErrNoMetadata) {
			fmt.Printf("No project in %s yet. Run a requirement to create one.\n", cfg.Workspace)
			return nil
		}
		return err
	}

	info, err := proj.Info()
	if err != nil {
		return err
	}

	m := info.Metadata
	fmt.Printf("Project:      %s (v%s, %s)\n", m.Name, m.Version, m.Language)
	if m.Description != "" {
		fmt.Printf("Description:  %s\n", m.Description)
	}
	fmt.Printf("Created:      %s\n", m.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:      %s\n", m.UpdatedAt.Format("2006-01-02 15:04:05"))
	if len(m.Dependencies) > 0 {
		fmt.Printf("Dependencies: %s\n", strings.Join(m.Dependencies, ", "))
	}
	if len(m.Tags) > 0 {
		fmt.Printf("Tags:         %s\n", strings.Join(m.Tags, ", "))
	}

	fmt.Printf("\nTracked files (%d):\n", len(info.TrackedFiles))
	for _, f := range info.TrackedFiles {
		fmt.Printf("  %s\n", f)
	}

	dbPath := cfg.Session.DatabasePath
	store, err := session.NewStore(resolveDBPath(proj, dbPath))
	if err != nil {
		// Session history is auxiliary; the project status already printed.
		fmt.Printf("\n(session history unavailable: %v)\n", err)
		return nil
	}
	defer store.Close()

	sessions, err := store.RecentSessions(5)
	if err != nil {
		return err
	}
	if len(sessions) > 0 {
		fmt.Println("\nRecent sessions:")
		for _, s := range sessions {
			fmt.Printf("  %s  %s  %d turns  %s\n",
				s.CreatedAt.Format("2006-01-02 15:04"), s.ID[:8], s.TurnCount, s.Workspace)
		}
	}
	return nil
}
