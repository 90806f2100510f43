// Package runner executes selected test environments: it prepares their
// work directories, installs dependencies through the configured installer
// and runs each environment's commands, reporting progress and collecting
// results.
package runner

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"tenvctl/internal/envspec"
	"tenvctl/internal/executor"
	"tenvctl/pkg/logging"
)

type envRunner struct {
	exec      executor.Runner
	installer Installer
	reporter  Reporter
}

// New creates a runner. The reporter must not be nil; use NewQuietReporter
// for silent runs.
func New(exec executor.Runner, installer Installer, reporter Reporter) Runner {
	return &envRunner{
		exec:      exec,
		installer: installer,
		reporter:  reporter,
	}
}

// Run executes the environments according to options.
func (r *envRunner) Run(ctx context.Context, environments []envspec.Resolved, options Options) (*SuiteResult, error) {
	result := &SuiteResult{
		StartTime:          time.Now(),
		TotalEnvironments:  len(environments),
		EnvironmentResults: make([]EnvironmentResult, 0, len(environments)),
		Options:            options,
	}

	r.reporter.ReportStart(environments, options)

	if options.Parallel <= 1 {
		for i, env := range environments {
			envResult := r.runEnvironment(ctx, env, options)
			result.EnvironmentResults = append(result.EnvironmentResults, envResult)
			r.updateCounters(result, envResult)
			r.reporter.ReportEnvironmentResult(envResult)

			if options.FailFast && envResult.Result != ResultPassed {
				// Remaining environments are recorded as skipped so the
				// report accounts for the whole selection.
				for _, skipped := range environments[i+1:] {
					skippedResult := EnvironmentResult{
						Name:      skipped.Name,
						Result:    ResultSkipped,
						StartTime: time.Now(),
						EndTime:   time.Now(),
					}
					result.EnvironmentResults = append(result.EnvironmentResults, skippedResult)
					r.updateCounters(result, skippedResult)
					r.reporter.ReportEnvironmentResult(skippedResult)
				}
				break
			}
		}
	} else {
		for _, envResult := range r.runParallel(ctx, environments, options) {
			result.EnvironmentResults = append(result.EnvironmentResults, envResult)
			r.updateCounters(result, envResult)
			r.reporter.ReportEnvironmentResult(envResult)
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	r.reporter.ReportSuiteResult(*result)

	if options.ReportPath != "" {
		if err := writeReport(options.ReportPath, *result); err != nil {
			logging.Warn("Runner", "failed to save report: %v", err)
		}
	}
	return result, nil
}

// runParallel executes environments with a worker pool. Results come back
// in completion order; each environment's own commands stay sequential.
func (r *envRunner) runParallel(ctx context.Context, environments []envspec.Resolved, options Options) []EnvironmentResult {
	envChan := make(chan envspec.Resolved, len(environments))
	resultChan := make(chan EnvironmentResult, len(environments))

	for _, env := range environments {
		envChan <- env
	}
	close(envChan)

	numWorkers := options.Parallel
	if numWorkers > len(environments) {
		numWorkers = len(environments)
	}

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for env := range envChan {
				logging.Debug("Runner", "worker %d running environment %q", workerID, env.Name)
				envResult := r.runEnvironment(ctx, env, options)
				resultChan <- envResult

				if options.FailFast && envResult.Result != ResultPassed {
					// Drain what this worker would otherwise pick up.
					for skipped := range envChan {
						resultChan <- EnvironmentResult{
							Name:      skipped.Name,
							Result:    ResultSkipped,
							StartTime: time.Now(),
							EndTime:   time.Now(),
						}
					}
					return
				}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var results []EnvironmentResult
	for envResult := range resultChan {
		results = append(results, envResult)
	}
	return results
}

// runEnvironment drives the lifecycle of one environment: workdir, deps,
// commands.
func (r *envRunner) runEnvironment(ctx context.Context, env envspec.Resolved, options Options) EnvironmentResult {
	result := EnvironmentResult{
		Name:      env.Name,
		StartTime: time.Now(),
		Result:    ResultPassed,
	}
	finish := func() EnvironmentResult {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		return result
	}

	r.reporter.ReportEnvironmentStart(env)

	envCtx := ctx
	if env.Timeout > 0 {
		var cancel context.CancelFunc
		envCtx, cancel = context.WithTimeout(ctx, env.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(env.EnvDir, 0755); err != nil {
		result.Result = ResultError
		result.Error = fmt.Sprintf("failed to prepare work directory: %v", err)
		return finish()
	}
	if err := os.MkdirAll(env.DistDir, 0755); err != nil {
		result.Result = ResultError
		result.Error = fmt.Sprintf("failed to prepare dist directory: %v", err)
		return finish()
	}

	installed, err := r.installer.Install(envCtx, env)
	if err != nil {
		result.Result = ResultError
		result.Error = fmt.Sprintf("failed to install dependencies: %v", err)
		return finish()
	}
	result.InstalledDeps = installed

	subCtx := envspec.SubstitutionContext{
		EnvName: env.Name,
		EnvDir:  env.EnvDir,
		DistDir: env.DistDir,
		Posargs: options.Posargs,
	}
	environ, err := env.ComputeEnviron(os.Environ(), subCtx)
	if err != nil {
		result.Result = ResultError
		result.Error = err.Error()
		return finish()
	}

	for _, command := range env.Commands {
		commandResult := r.runCommand(envCtx, env, command, subCtx, environ)
		result.CommandResults = append(result.CommandResults, commandResult)
		r.reporter.ReportCommandResult(env.Name, commandResult)

		if commandResult.Result != ResultPassed {
			result.Result = commandResult.Result
			result.Error = commandResult.Error
			break
		}
	}
	return finish()
}

func (r *envRunner) runCommand(ctx context.Context, env envspec.Resolved, command []string, subCtx envspec.SubstitutionContext, environ []string) CommandResult {
	argv, err := envspec.ExpandCommand(command, subCtx)
	if err != nil {
		return CommandResult{Argv: command, Result: ResultError, Error: err.Error()}
	}
	if len(argv) == 0 {
		return CommandResult{Argv: command, Result: ResultError, Error: "command expanded to nothing"}
	}

	if err := env.CheckAllowlisted(argv[0]); err != nil {
		return CommandResult{Argv: argv, Result: ResultError, Error: err.Error()}
	}

	execResult, err := r.exec.Run(ctx, executor.Command{
		Argv: argv,
		Dir:  env.EnvDir,
		Env:  environ,
	})
	commandResult := CommandResult{
		Argv:     argv,
		Result:   ResultPassed,
		ExitCode: execResult.ExitCode,
		Duration: execResult.Duration,
		Stdout:   execResult.Stdout,
		Stderr:   execResult.Stderr,
	}
	if err != nil {
		commandResult.Error = err.Error()
		if execResult.ExitCode > 0 {
			commandResult.Result = ResultFailed
		} else {
			commandResult.Result = ResultError
		}
	}
	return commandResult
}

func (r *envRunner) updateCounters(suite *SuiteResult, envResult EnvironmentResult) {
	switch envResult.Result {
	case ResultPassed:
		suite.PassedEnvironments++
	case ResultFailed:
		suite.FailedEnvironments++
	case ResultSkipped:
		suite.SkippedEnvs++
	case ResultError:
		suite.ErrorEnvironments++
	}
}
