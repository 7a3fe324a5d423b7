package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codesmith/internal/project"
)

// exportCmd copies tracked project files out of the workspace.
var exportCmd = &cobra.Command{
	Use:   "export [output-dir]",
	Short: "Export tracked project files to a directory",
	Long: `Copies every tracked file from the workspace into the output directory,
along with a project_info.json summary of metadata and recent changes.
Files that were deleted are not exported.`,
	Args: cobra.ExactArgs(1),
	RunE: exportProject,
}

func exportProject(cmd *cobra.Command, args []string) error {
	outputDir := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	proj, err := project.Open(cfg.Workspace)
	if err != nil {
		return err
	}
	if err := proj.Load(); err != nil {
		return err
	}

	logger.Info("exporting project",
		zap.String("workspace", cfg.Workspace),
		zap.String("output", outputDir))

	if err := proj.Export(outputDir); err != nil {
		return err
	}

	info, err := proj.Info()
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d files to %s\n", len(info.TrackedFiles), outputDir)
	return nil
}
