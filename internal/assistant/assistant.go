// Package assistant orchestrates the full request pipeline: produce a
// descriptor from the requirement, decode it, execute it against the
// workspace, and record what happened in the ledger and session history.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"codesmith/internal/artifact"
	"codesmith/internal/config"
	"codesmith/internal/logging"
	"codesmith/internal/producer"
	"codesmith/internal/project"
	"codesmith/internal/runner"
	"codesmith/internal/session"
)

// Result is the outcome of one processed request.
type Result struct {
	Raw        string
	Descriptor *artifact.Descriptor
	Report     *artifact.Report
}

// Assistant wires the producer, executor, ledger, and session store over
// one workspace.
type Assistant struct {
	cfg       *config.Config
	proj      *project.Project
	prod      *producer.Producer
	exec      *artifact.Executor
	sessions  *session.Store
	sessionID string
}

// New creates an assistant for the configured workspace, loading or
// initializing project metadata and opening a new session.
func New(cfg *config.Config) (*Assistant, error) {
	client, err := producer.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithClient(cfg, client)
}

// NewWithClient is New with an explicit LLM client.
func NewWithClient(cfg *config.Config, client producer.LLMClient) (*Assistant, error) {
	proj, err := project.Open(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	if err := proj.Load(); err != nil {
		if !errors.Is(err, project.ErrNoMetadata) {
			return nil, err
		}
		name := filepath.Base(proj.Store.Root())
		if err := proj.Create(name, "Project created from requirements"); err != nil {
			return nil, err
		}
	}

	shell := runner.NewShellRunner()
	shell.Timeout = cfg.GetExecutionTimeout()

	dbPath := cfg.Session.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(proj.Store.Root(), filepath.FromSlash(dbPath))
	}
	sessions, err := session.NewStore(dbPath)
	if err != nil {
		return nil, err
	}

	sessionID, err := sessions.NewSession(proj.Metadata.Name)
	if err != nil {
		sessions.Close()
		return nil, err
	}

	return &Assistant{
		cfg:       cfg,
		proj:      proj,
		prod:      producer.New(client),
		exec:      artifact.NewExecutor(proj.Store, shell),
		sessions:  sessions,
		sessionID: sessionID,
	}, nil
}

// ProcessRequest runs one requirement end to end. A decode failure leaves
// the workspace untouched and is returned as an error alongside the raw
// model output. Execution failures are not errors here; they are carried
// in the report with Succeeded=false.
func (a *Assistant) ProcessRequest(ctx context.Context, requirement string) (*Result, error) {
	raw, err := a.prod.Produce(ctx, requirement)
	if err != nil {
		return nil, fmt.Errorf("producing descriptor: %w", err)
	}

	result := &Result{Raw: raw}

	desc, err := artifact.Decode(raw)
	if err != nil {
		a.recordTurn(requirement, raw, nil)
		return result, err
	}
	result.Descriptor = desc

	report := a.exec.Execute(ctx, desc)
	result.Report = report

	a.recordLedger(desc, report)

	if len(desc.Requirements) > 0 {
		if err := a.proj.UpdateDependencies(desc.Requirements); err != nil {
			logging.LedgerError("Dependency update failed: %v", err)
		}
	}
	if err := a.proj.Save(); err != nil {
		logging.LedgerError("Project save failed: %v", err)
	}

	a.recordTurn(requirement, raw, report)
	return result, nil
}

// ClearConversation drops the producer's conversation history.
func (a *Assistant) ClearConversation() {
	a.prod.ClearHistory()
}

// Project returns the underlying project for inspection commands.
func (a *Assistant) Project() *project.Project {
	return a.proj
}

// Sessions returns the session store.
func (a *Assistant) Sessions() *session.Store {
	return a.sessions
}

// SessionID returns the id of the current session.
func (a *Assistant) SessionID() string {
	return a.sessionID
}

// Close releases the session store.
func (a *Assistant) Close() error {
	return a.sessions.Close()
}

// recordLedger writes one change per materialized file, with paths
// workspace-relative (scope dir included) so the ledger lines up with
// what is actually on disk.
func (a *Assistant) recordLedger(desc *artifact.Descriptor, report *artifact.Report) {
	for _, f := range report.CreatedFiles {
		p := path.Join(report.ScopeDir, f)
		if err := a.proj.Ledger.Record(project.OpCreate, p, "Materialized from "+desc.ID); err != nil {
			logging.LedgerError("Record create %s: %v", p, err)
		}
	}
	for _, f := range report.ModifiedFiles {
		p := path.Join(report.ScopeDir, f)
		if err := a.proj.Ledger.Record(project.OpModify, p, "Rewritten from "+desc.ID); err != nil {
			logging.LedgerError("Record modify %s: %v", p, err)
		}
	}
}

func (a *Assistant) recordTurn(requirement, raw string, report *artifact.Report) {
	reportJSON := ""
	if report != nil {
		if data, err := json.Marshal(report); err == nil {
			reportJSON = string(data)
		}
	}
	if _, err := a.sessions.RecordTurn(a.sessionID, requirement, raw, reportJSON); err != nil {
		logging.SessionError("Record turn failed: %v", err)
	}
}
