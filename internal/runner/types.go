package runner

import (
	"context"
	"time"

	"tenvctl/internal/envspec"
)

// Result represents the outcome of an environment or command run.
type Result string

const (
	// ResultPassed indicates every command exited zero.
	ResultPassed Result = "PASSED"
	// ResultFailed indicates a command exited non-zero.
	ResultFailed Result = "FAILED"
	// ResultSkipped indicates the environment was not run (fail-fast).
	ResultSkipped Result = "SKIPPED"
	// ResultError indicates the run broke before or between commands
	// (workdir preparation, install failure, allowlist rejection).
	ResultError Result = "ERROR"
)

// Options configures a suite run.
type Options struct {
	// Parallel is the number of environments run concurrently; values
	// below 2 mean sequential execution in selection order.
	Parallel int `json:"parallel"`
	// FailFast stops dispatching new environments after the first failure.
	FailFast bool `json:"fail_fast"`
	// Posargs are spliced into commands at {posargs}.
	Posargs []string `json:"posargs,omitempty"`
	// ReportPath, when set, is the directory the JSON report is written
	// to.
	ReportPath string `json:"report_path,omitempty"`
}

// CommandResult records one executed command within an environment.
type CommandResult struct {
	Argv     []string      `json:"argv"`
	Result   Result        `json:"result"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
	Stdout   string        `json:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// EnvironmentResult records one environment run.
type EnvironmentResult struct {
	Name           string          `json:"name"`
	Result         Result          `json:"result"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        time.Time       `json:"end_time"`
	Duration       time.Duration   `json:"duration"`
	InstalledDeps  []string        `json:"installed_deps,omitempty"`
	CommandResults []CommandResult `json:"command_results,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// SuiteResult is the aggregate outcome of a run.
type SuiteResult struct {
	StartTime          time.Time           `json:"start_time"`
	EndTime            time.Time           `json:"end_time"`
	Duration           time.Duration       `json:"duration"`
	TotalEnvironments  int                 `json:"total_environments"`
	PassedEnvironments int                 `json:"passed_environments"`
	FailedEnvironments int                 `json:"failed_environments"`
	SkippedEnvs        int                 `json:"skipped_environments"`
	ErrorEnvironments  int                 `json:"error_environments"`
	EnvironmentResults []EnvironmentResult `json:"environment_results"`
	Options            Options             `json:"options"`
}

// Failed reports whether any environment failed or errored.
func (s SuiteResult) Failed() bool {
	return s.FailedEnvironments > 0 || s.ErrorEnvironments > 0
}

// Runner executes a selection of resolved environments.
type Runner interface {
	Run(ctx context.Context, environments []envspec.Resolved, options Options) (*SuiteResult, error)
}

// Installer prepares an environment's dependencies.
type Installer interface {
	// Install installs env's deps into its work directory and returns the
	// list actually installed (empty when cached or skipped).
	Install(ctx context.Context, env envspec.Resolved) ([]string, error)
}

// Reporter receives run progress. Implementations must tolerate concurrent
// EnvironmentStart/EnvironmentResult calls when running in parallel.
type Reporter interface {
	// ReportStart is called once before any environment runs.
	ReportStart(environments []envspec.Resolved, options Options)
	// ReportEnvironmentStart is called when an environment begins.
	ReportEnvironmentStart(env envspec.Resolved)
	// ReportCommandResult is called after each command.
	ReportCommandResult(envName string, result CommandResult)
	// ReportEnvironmentResult is called when an environment completes.
	ReportEnvironmentResult(result EnvironmentResult)
	// ReportSuiteResult is called once after all environments complete.
	ReportSuiteResult(result SuiteResult)
}
