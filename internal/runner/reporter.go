package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tenvctl/internal/color"
	"tenvctl/internal/envspec"
)

// consoleReporter prints human-readable progress and a styled summary.
type consoleReporter struct {
	verbose bool

	mu sync.Mutex
}

// NewConsoleReporter creates the default console reporter.
func NewConsoleReporter(verbose bool) Reporter {
	return &consoleReporter{verbose: verbose}
}

func (r *consoleReporter) ReportStart(environments []envspec.Resolved, options Options) {
	names := make([]string, 0, len(environments))
	for _, env := range environments {
		names = append(names, env.Name)
	}
	fmt.Printf("Running %d environment(s): %s\n", len(environments), strings.Join(names, ", "))
	if r.verbose {
		fmt.Printf("  parallel: %d, fail-fast: %t\n", options.Parallel, options.FailFast)
		if len(options.Posargs) > 0 {
			fmt.Printf("  posargs: %s\n", strings.Join(options.Posargs, " "))
		}
		fmt.Println()
	}
}

func (r *consoleReporter) ReportEnvironmentStart(env envspec.Resolved) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.verbose {
		fmt.Printf("%s %s\n", color.InfoStyle().Render("▶"), env.Name)
		if env.Description != "" {
			fmt.Printf("  %s\n", color.MutedStyle().Render(env.Description))
		}
	}
}

func (r *consoleReporter) ReportCommandResult(envName string, result CommandResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.verbose {
		return
	}
	fmt.Printf("  %s %s (%v)\n", resultSymbol(result.Result), strings.Join(result.Argv, " "), result.Duration.Round(time.Millisecond))
	if result.Error != "" {
		fmt.Printf("    %s\n", color.FailureStyle().Render(result.Error))
	}
}

func (r *consoleReporter) ReportEnvironmentResult(result EnvironmentResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Printf("%s %s (%v)\n", resultSymbol(result.Result), result.Name, result.Duration.Round(time.Millisecond))
	if !r.verbose && result.Error != "" {
		fmt.Printf("  %s\n", color.FailureStyle().Render(result.Error))
	}
}

func (r *consoleReporter) ReportSuiteResult(result SuiteResult) {
	fmt.Println()
	fmt.Printf("%s  %v\n", color.InfoStyle().Render("summary"), result.Duration.Round(time.Millisecond))
	fmt.Printf("  %s %d passed\n", color.SuccessStyle().Render("✔"), result.PassedEnvironments)
	if result.FailedEnvironments > 0 {
		fmt.Printf("  %s %d failed\n", color.FailureStyle().Render("✘"), result.FailedEnvironments)
	}
	if result.ErrorEnvironments > 0 {
		fmt.Printf("  %s %d errored\n", color.FailureStyle().Render("!"), result.ErrorEnvironments)
	}
	if result.SkippedEnvs > 0 {
		fmt.Printf("  %s %d skipped\n", color.WarningStyle().Render("-"), result.SkippedEnvs)
	}

	if result.Failed() {
		fmt.Println(color.FailureStyle().Render("FAILED"))
	} else {
		fmt.Println(color.SuccessStyle().Render("OK"))
	}
}

func resultSymbol(result Result) string {
	switch result {
	case ResultPassed:
		return color.SuccessStyle().Render("✔")
	case ResultFailed:
		return color.FailureStyle().Render("✘")
	case ResultSkipped:
		return color.WarningStyle().Render("-")
	case ResultError:
		return color.FailureStyle().Render("!")
	default:
		return "?"
	}
}

// quietReporter only surfaces failures and the one-line outcome, for CI
// logs.
type quietReporter struct{}

// NewQuietReporter creates a reporter that only outputs essential
// information.
func NewQuietReporter() Reporter {
	return &quietReporter{}
}

func (r *quietReporter) ReportStart([]envspec.Resolved, Options) {}

func (r *quietReporter) ReportEnvironmentStart(envspec.Resolved) {}

func (r *quietReporter) ReportCommandResult(string, CommandResult) {}

func (r *quietReporter) ReportEnvironmentResult(result EnvironmentResult) {
	if result.Result == ResultFailed || result.Result == ResultError {
		fmt.Printf("%s: %s\n", result.Name, result.Error)
	}
}

func (r *quietReporter) ReportSuiteResult(result SuiteResult) {
	if result.Failed() {
		fmt.Printf("%d/%d environments failed\n",
			result.FailedEnvironments+result.ErrorEnvironments, result.TotalEnvironments)
		return
	}
	fmt.Printf("all %d environments passed\n", result.PassedEnvironments)
}

// nopReporter emits nothing. Used where stdout belongs to another
// protocol, such as the MCP stdio transport.
type nopReporter struct{}

// NewNopReporter creates a reporter that discards all progress. Callers
// read the outcome from the returned SuiteResult instead.
func NewNopReporter() Reporter {
	return &nopReporter{}
}

func (r *nopReporter) ReportStart([]envspec.Resolved, Options) {}

func (r *nopReporter) ReportEnvironmentStart(envspec.Resolved) {}

func (r *nopReporter) ReportCommandResult(string, CommandResult) {}

func (r *nopReporter) ReportEnvironmentResult(EnvironmentResult) {}

func (r *nopReporter) ReportSuiteResult(SuiteResult) {}

// jsonReporter emits the whole suite result as JSON on stdout, for machine
// consumption.
type jsonReporter struct{}

// NewJSONReporter creates a reporter that outputs JSON.
func NewJSONReporter() Reporter {
	return &jsonReporter{}
}

func (r *jsonReporter) ReportStart([]envspec.Resolved, Options) {}

func (r *jsonReporter) ReportEnvironmentStart(envspec.Resolved) {}

func (r *jsonReporter) ReportCommandResult(string, CommandResult) {}

func (r *jsonReporter) ReportEnvironmentResult(EnvironmentResult) {}

func (r *jsonReporter) ReportSuiteResult(result SuiteResult) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Printf(`{"error": %q}`+"\n", err.Error())
		return
	}
	fmt.Println(string(data))
}

// Event carries run progress to the watch TUI.
type Event struct {
	// Exactly one of the following is set.
	Start             *StartEvent
	EnvironmentStart  *envspec.Resolved
	CommandResult     *CommandEvent
	EnvironmentResult *EnvironmentResult
	SuiteResult       *SuiteResult
}

// StartEvent announces the selection about to run.
type StartEvent struct {
	Environments []string
	Options      Options
}

// CommandEvent pairs a command result with its environment.
type CommandEvent struct {
	EnvName string
	Result  CommandResult
}

// channelReporter forwards progress over a channel; the TUI drains it.
type channelReporter struct {
	events chan<- Event
}

// NewChannelReporter creates a reporter feeding the given channel. The
// channel is closed after the suite result is sent.
func NewChannelReporter(events chan<- Event) Reporter {
	return &channelReporter{events: events}
}

func (r *channelReporter) ReportStart(environments []envspec.Resolved, options Options) {
	names := make([]string, 0, len(environments))
	for _, env := range environments {
		names = append(names, env.Name)
	}
	r.events <- Event{Start: &StartEvent{Environments: names, Options: options}}
}

func (r *channelReporter) ReportEnvironmentStart(env envspec.Resolved) {
	e := env
	r.events <- Event{EnvironmentStart: &e}
}

func (r *channelReporter) ReportCommandResult(envName string, result CommandResult) {
	r.events <- Event{CommandResult: &CommandEvent{EnvName: envName, Result: result}}
}

func (r *channelReporter) ReportEnvironmentResult(result EnvironmentResult) {
	res := result
	r.events <- Event{EnvironmentResult: &res}
}

func (r *channelReporter) ReportSuiteResult(result SuiteResult) {
	res := result
	r.events <- Event{SuiteResult: &res}
	close(r.events)
}

// writeReport persists the suite result as a timestamped JSON file under
// dir.
func writeReport(dir string, result SuiteResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	filename := fmt.Sprintf("tenvctl-report-%s.json", time.Now().Format("20060102-150405"))
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}
