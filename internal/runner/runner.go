// Package runner executes shell commands on behalf of artifact actions.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"codesmith/internal/logging"
)

// maxOutputBytes caps captured output so a chatty build cannot blow up
// reports or logs.
const maxOutputBytes = 50000

// DefaultTimeout bounds a single command when the caller sets none.
const DefaultTimeout = 60 * time.Second

// ErrCommandFailed wraps any non-zero exit or spawn failure.
var ErrCommandFailed = fmt.Errorf("command failed")

// CommandRunner runs a shell command in a working directory and returns
// its combined output.
type CommandRunner interface {
	Run(ctx context.Context, dir, command string) (string, error)
}

// ShellRunner runs commands through the platform shell, sh -c on Unix
// and cmd /C on Windows. The working directory is set on the child
// process; the parent never changes directory.
type ShellRunner struct {
	Timeout time.Duration
	Env     []string
}

// NewShellRunner creates a ShellRunner with the default timeout.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{Timeout: DefaultTimeout}
}

// Run executes command with dir as the working directory. Stdout and
// stderr are captured separately and joined; both are returned even when
// the command fails so callers can surface partial output.
func (r *ShellRunner) Run(ctx context.Context, dir, command string) (string, error) {
	if command == "" {
		return "", fmt.Errorf("%w: empty command", ErrCommandFailed)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(execCtx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(execCtx, "sh", "-c", command)
	}
	cmd.Dir = dir
	cmd.Env = os.Environ()
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Env, r.Env...)
	}

	logging.RunnerDebug("run: dir=%s cmd=%s", dir, command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		if output != "" {
			output += "\n--- stderr ---\n"
		}
		output += stderr.String()
	}
	if len(output) > maxOutputBytes {
		output = output[:maxOutputBytes] + "\n...[truncated]"
	}

	if err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			logging.RunnerError("timed out after %s: %s", timeout, command)
			return output, fmt.Errorf("%w: timed out after %s: %s", ErrCommandFailed, timeout, command)
		}
		logging.RunnerError("failed: %s (%v)", command, err)
		return output, fmt.Errorf("%w: %s: %v", ErrCommandFailed, command, err)
	}

	logging.Runner("completed: %s (%d bytes output)", command, len(output))
	return output, nil
}
