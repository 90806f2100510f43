// Package executor runs subprocesses with captured output. Everything
// tenvctl delegates (dependency installation, environment commands, the
// linter) goes through the Runner so output capture and cancellation
// behave the same way everywhere.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"tenvctl/pkg/logging"
)

// Command describes a single subprocess invocation.
type Command struct {
	// Argv is the executable and its arguments. Must be non-empty.
	Argv []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env is the full subprocess environment; nil inherits the parent's.
	Env []string
}

// String renders the invocation for logs and reports.
func (c Command) String() string {
	return strings.Join(c.Argv, " ")
}

// Result captures a finished subprocess.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, command Command) (Result, error)
}

// NewRunner returns the default subprocess runner.
func NewRunner() Runner {
	return &runner{}
}

type runner struct{}

func (r *runner) Run(ctx context.Context, command Command) (Result, error) {
	if len(command.Argv) == 0 || command.Argv[0] == "" {
		return Result{}, errors.New("command executable can not be empty")
	}

	// nolint:gosec
	cmd := exec.CommandContext(ctx, command.Argv[0], command.Argv[1:]...)
	cmd.Dir = command.Dir
	cmd.Env = command.Env

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	logging.Debug("Executor", "running %q in %q", command.String(), command.Dir)

	start := time.Now()
	runErr := cmd.Run()
	result := Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: time.Since(start),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("command %q aborted: %w", command.String(), ctxErr)
		}
		// Include stderr for diagnostics; callers surface it in reports.
		return result, fmt.Errorf("command %q failed: %w. Stderr: %s", command.String(), runErr, result.Stderr)
	}
	return result, nil
}
