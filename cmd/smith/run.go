package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codesmith/internal/artifact"
	"codesmith/internal/assistant"
)

var requirementFile string

// runCmd executes a single requirement without the interactive UI.
var runCmd = &cobra.Command{
	Use:   "run [requirement]",
	Short: "Process a single requirement and materialize the result",
	Long: `Sends one requirement through the full pipeline: descriptor production,
decoding, and execution into the workspace. The requirement is taken from
the arguments, or from a file with --requirement-file.

Examples:
  smith run "create a REST API for managing books"
  smith run --requirement-file requirement.txt`,
	RunE: runRequirement,
}

func init() {
	runCmd.Flags().StringVarP(&requirementFile, "requirement-file", "f", "", "Read the requirement from a file")
}

func runRequirement(cmd *cobra.Command, args []string) error {
	requirement := strings.TrimSpace(strings.Join(args, " "))
	if requirementFile != "" {
		data, err := os.ReadFile(requirementFile)
		if err != nil {
			return fmt.Errorf("failed to read requirement file: %w", err)
		}
		requirement = strings.TrimSpace(string(data))
	}
	if requirement == "" {
		return fmt.Errorf("no requirement given (pass as argument or --requirement-file)")
	}

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

	logger.Info("processing requirement",
		zap.String("workspace", cfg.Workspace),
		zap.String("provider", cfg.LLM.Provider),
		zap.Int("length", len(requirement)))

	result, err := a.ProcessRequest(context.Background(), requirement)
	if err != nil {
		if errors.Is(err, artifact.ErrDecode) && result != nil {
			fmt.Fprintln(os.Stderr, "Model output could not be decoded; raw response:")
			fmt.Fprintln(os.Stderr, result.Raw)
		}
		return err
	}

	printReport(result)
	if !result.Report.Succeeded {
		return fmt.Errorf("execution failed: %s", strings.Join(result.Report.Errors, "; "))
	}
	return nil
}

func printReport(result *assistant.Result) {
	fmt.Printf("Project: %s (%s)\n", result.Descriptor.Title, result.Descriptor.ID)
	for _, f := range result.Report.CreatedFiles {
		fmt.Printf("  created   %s/%s\n", result.Report.ScopeDir, f)
	}
	for _, f := range result.Report.ModifiedFiles {
		fmt.Printf("  modified  %s/%s\n", result.Report.ScopeDir, f)
	}
	for _, c := range result.Report.CommandsRun {
		fmt.Printf("  ran       %s\n", c)
	}
	for _, e := range result.Report.Errors {
		fmt.Printf("  error     %s\n", e)
	}
	if result.Report.Succeeded {
		fmt.Println("Done.")
	}
}
