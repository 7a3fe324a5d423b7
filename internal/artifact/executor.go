package artifact

import (
	"context"
	"fmt"

	"codesmith/internal/logging"
	"codesmith/internal/runner"
	"codesmith/internal/workspace"
)

// Report records what an execution actually did. Paths are relative to
// the execution scope directory.
type Report struct {
	ScopeDir      string   `json:"scope_dir"`
	CreatedFiles  []string `json:"created_files"`
	ModifiedFiles []string `json:"modified_files"`
	CommandsRun   []string `json:"commands_run"`
	Errors        []string `json:"errors"`
	Succeeded     bool     `json:"succeeded"`
}

// Executor materializes descriptors into the workspace. All file writes go
// through a sub-store scoped to the descriptor's id; the process working
// directory is never changed.
type Executor struct {
	store  *workspace.Store
	runner runner.CommandRunner
}

// NewExecutor creates an executor over the given workspace store.
func NewExecutor(store *workspace.Store, r runner.CommandRunner) *Executor {
	return &Executor{store: store, runner: r}
}

// Execute runs every action of the descriptor in order, sub-project by
// sub-project. Execution is fail-fast: the first failing action stops the
// run, and everything materialized before it stays in place. The report
// always reflects what actually happened, including on failure.
func (e *Executor) Execute(ctx context.Context, desc *Descriptor) *Report {
	timer := logging.StartTimer(logging.CategoryArtifact, "execute "+desc.ID)
	defer timer.Stop()

	report := &Report{
		ScopeDir:      desc.ID,
		CreatedFiles:  []string{},
		ModifiedFiles: []string{},
		CommandsRun:   []string{},
		Errors:        []string{},
	}

	scope, err := e.store.Sub(desc.ID)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("create scope %s: %v", desc.ID, err))
		return report
	}

	logging.Artifact("Executing descriptor %s (%d sub-projects, %d files)",
		desc.ID, len(desc.SubProjects), desc.FileCount())

	for _, sp := range desc.SubProjects {
		for _, action := range sp.Actions {
			if err := ctx.Err(); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: canceled: %v", sp.ID, err))
				return report
			}

			switch action.Type {
			case ActionFile:
				if err := e.applyFile(scope, &action, report); err != nil {
					logging.ArtifactError("%s: file %s: %v", sp.ID, action.FilePath, err)
					report.Errors = append(report.Errors, fmt.Sprintf("%s: file %s: %v", sp.ID, action.FilePath, err))
					return report
				}
			case ActionShell:
				out, err := e.runner.Run(ctx, scope.Root(), action.Command)
				if err != nil {
					logging.ArtifactError("%s: shell %q: %v", sp.ID, action.Command, err)
					report.Errors = append(report.Errors, fmt.Sprintf("%s: shell %q: %v", sp.ID, action.Command, err))
					return report
				}
				logging.ArtifactDebug("%s: shell %q ok (%d bytes)", sp.ID, action.Command, len(out))
				report.CommandsRun = append(report.CommandsRun, action.Command)
			default:
				// Unknown types were rejected at decode time.
				report.Errors = append(report.Errors, fmt.Sprintf("%s: unknown action type %q", sp.ID, action.Type))
				return report
			}
		}
	}

	report.Succeeded = true
	logging.Artifact("Descriptor %s done: %d created, %d modified, %d commands",
		desc.ID, len(report.CreatedFiles), len(report.ModifiedFiles), len(report.CommandsRun))
	return report
}

func (e *Executor) applyFile(scope *workspace.Store, action *Action, report *Report) error {
	existed := scope.FileExists(action.FilePath)
	if err := scope.CreateFile(action.FilePath, action.Content); err != nil {
		return err
	}
	if existed {
		report.ModifiedFiles = append(report.ModifiedFiles, action.FilePath)
	} else {
		report.CreatedFiles = append(report.CreatedFiles, action.FilePath)
	}
	return nil
}
