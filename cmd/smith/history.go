package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codesmith/internal/project"
)

var (
	historyLimit int
	historyPath  string
)

// historyCmd inspects the change ledger.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent workspace changes from the ledger",
	Long: `Shows what smith has done to the workspace. Without flags, the most
recent changes are listed newest first. With --path, the full history of
one file is shown oldest first.`,
	RunE: showHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of recent changes to show")
	historyCmd.Flags().StringVarP(&historyPath, "path", "p", "", "Show the full history of one file")
}

func showHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	proj, err := project.Open(cfg.Workspace)
	if err != nil {
		return err
	}

	if historyPath != "" {
		changes := proj.Ledger.History(historyPath)
		if len(changes) == 0 {
			fmt.Printf("No recorded changes for %s\n", historyPath)
			return nil
		}
		for _, c := range changes {
			printChange(c)
		}
		return nil
	}

	changes := proj.Ledger.Recent(historyLimit)
	if len(changes) == 0 {
		fmt.Println("No recorded changes.")
		return nil
	}
	for _, c := range changes {
		printChange(c)
	}
	return nil
}

func printChange(c project.FileChange) {
	hash := c.ContentHash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	fmt.Printf("%s  %-7s %-40s %s  %s\n",
		c.Timestamp.Format("2006-01-02 15:04:05"), c.Operation, c.Path, hash, c.Description)
}
