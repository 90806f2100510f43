package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tenvctl/internal/config"
	"tenvctl/internal/envspec"
	"tenvctl/internal/executor"
	"tenvctl/internal/runner"
	"tenvctl/internal/tui"
	"tenvctl/pkg/logging"
)

// envSelectionVar is the environment variable consulted when no environment
// names are given on the command line.
const envSelectionVar = "TENV_ENV"

var (
	runParallel   int
	runFailFast   bool
	runOutput     string
	runReportPath string
	runWatch      bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [environment...] [-- posargs...]",
		Short: "Run test environments",
		Long: `Runs the selected test environments: prepares each environment's work
directory, installs its declared dependencies and executes its commands.

Environment selection, in order of precedence:
1. Names given as arguments
2. The ` + envSelectionVar + ` environment variable (comma-separated)
3. The envlist declared in the configuration

Arguments after a literal -- are passed through to commands that declare
a {posargs} placeholder:

  tenvctl run unit -- tests/test_service.py -v`,
		RunE: runRun,
	}

	cmd.Flags().IntVar(&runParallel, "parallel", 1, "Number of environments to run concurrently")
	cmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "Stop scheduling environments after the first failure")
	cmd.Flags().StringVarP(&runOutput, "output", "o", "text", "Output format (text, quiet, json)")
	cmd.Flags().StringVar(&runReportPath, "report", "", "Directory to write a JSON run report to")
	cmd.Flags().BoolVar(&runWatch, "watch", false, "Show live per-environment progress")
	cmd.MarkFlagsMutuallyExclusive("watch", "output")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if runParallel < 1 {
			return fmt.Errorf("parallel workers must be at least 1, got %d", runParallel)
		}
		switch runOutput {
		case "text", "quiet", "json":
		default:
			return fmt.Errorf("invalid output format %q, must be text, quiet or json", runOutput)
		}
		return nil
	}
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	names, posargs := splitRunArgs(cmd, args)
	selection, err := selectEnvironments(cfg, names)
	if err != nil {
		return err
	}
	if len(selection) == 0 {
		return fmt.Errorf("no environments selected: pass names, set %s or declare an envlist", envSelectionVar)
	}

	environments, err := envspec.ResolveSelection(cfg, selection)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	options := runner.Options{
		Parallel:   runParallel,
		FailFast:   runFailFast,
		Posargs:    posargs,
		ReportPath: runReportPath,
	}

	if runWatch {
		return runWithWatch(ctx, environments, options)
	}

	var reporter runner.Reporter
	switch runOutput {
	case "quiet":
		reporter = runner.NewQuietReporter()
	case "json":
		reporter = runner.NewJSONReporter()
	default:
		reporter = runner.NewConsoleReporter(rootDebug)
	}

	exec := executor.NewRunner()
	r := runner.New(exec, runner.NewInstaller(exec), reporter)
	result, err := r.Run(ctx, environments, options)
	if err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("%d of %d environment(s) did not pass",
			result.FailedEnvironments+result.ErrorEnvironments, result.TotalEnvironments)
	}
	return nil
}

// watchOutcome carries the runner's result out of the watch goroutine.
type watchOutcome struct {
	result *runner.SuiteResult
	err    error
}

// runWithWatch drives the runner through a channel reporter while the TUI
// drains the events on the main goroutine. Log output is routed onto the
// watch channel so it renders inside the view instead of interleaving with
// the terminal drawing.
func runWithWatch(ctx context.Context, environments []envspec.Resolved, options runner.Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	level := logging.LevelInfo
	if rootDebug {
		level = logging.LevelDebug
	}
	logs := logging.InitForWatch(level)
	defer logging.InitForCLI(level, os.Stderr)

	events := make(chan runner.Event, 64)
	exec := executor.NewRunner()
	r := runner.New(exec, runner.NewInstaller(exec), runner.NewChannelReporter(events))

	done := make(chan watchOutcome, 1)
	go func() {
		result, err := r.Run(ctx, environments, options)
		logging.CloseWatchChannel()
		done <- watchOutcome{result: result, err: err}
	}()

	if err := tui.Run(events, logs); err != nil {
		fmt.Fprintf(os.Stderr, "watch view failed: %v\n", err)
	}

	outcome := waitForRun(cancel, events, logs, done)
	if outcome.err != nil {
		return outcome.err
	}
	if outcome.result.Failed() {
		return fmt.Errorf("%d of %d environment(s) did not pass",
			outcome.result.FailedEnvironments+outcome.result.ErrorEnvironments, outcome.result.TotalEnvironments)
	}
	return nil
}

// waitForRun cancels the run and keeps draining the event and log channels
// until the runner finishes. Without this a watch view quit mid-run would
// leave the channel reporter blocked on a full buffer and deadlock the CLI.
func waitForRun(cancel context.CancelFunc, events <-chan runner.Event, logs <-chan logging.LogEntry, done <-chan watchOutcome) watchOutcome {
	cancel()
	go func() {
		for range events {
		}
	}()
	go func() {
		for range logs {
		}
	}()
	return <-done
}

// splitRunArgs separates environment names from posargs at the -- marker.
func splitRunArgs(cmd *cobra.Command, args []string) (names, posargs []string) {
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		return args[:at], args[at:]
	}
	return args, nil
}

// selectEnvironments applies the selection precedence: explicit names, then
// TENV_ENV, then the configured envlist.
func selectEnvironments(cfg config.Config, names []string) ([]string, error) {
	if len(names) > 0 {
		return names, nil
	}
	if value := os.Getenv(envSelectionVar); value != "" {
		var selection []string
		for _, name := range strings.Split(value, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("%s contains an empty environment name: %q", envSelectionVar, value)
			}
			selection = append(selection, name)
		}
		return selection, nil
	}
	return cfg.Envlist, nil
}
