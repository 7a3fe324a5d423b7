package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codesmith/internal/config"
	"codesmith/internal/logging"
)

var (
	// Global flags
	verbose   bool
	apiKey    string
	workspace string
	provider  string
	timeout   time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "smith",
	Short: "smith - AI project scaffolding assistant",
	Long: `smith turns natural-language requirements into project files on disk.

A requirement is sent to an LLM backend, which answers with a structured
scaffolding descriptor: components, files, and setup commands. smith
materializes the files inside a sandboxed workspace directory, runs the
commands, and records every change in a persistent ledger.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Interactive mode has its own UI, skip the operator logger
		if cmd.Use == "smith" && cmd.CalledAs() == "smith" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// loadConfig loads config for the selected workspace and applies flag
// overrides on top of file and environment values.
func loadConfig() (*config.Config, error) {
	ws := workspace
	if ws == "" {
		ws = "workspace"
	}

	cfg, err := config.LoadWorkspace(ws)
	if err != nil {
		return nil, err
	}
	cfg.Workspace = ws
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if provider != "" {
		cfg.LLM.Provider = provider
	}
	if timeout > 0 {
		cfg.LLM.Timeout = timeout.String()
	}

	if err := logging.Initialize(ws); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging init failed: %v\n", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "LLM API key (or set OPENAI_API_KEY / ANTHROPIC_API_KEY / GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: ./workspace)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider: openai, anthropic, gemini")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "LLM request timeout")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
