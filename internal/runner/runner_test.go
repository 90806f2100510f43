package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenvctl/internal/envspec"
	"tenvctl/internal/executor"
)

// fakeExec scripts subprocess outcomes by executable name.
type fakeExec struct {
	mu       sync.Mutex
	commands []executor.Command
	failing  map[string]int // executable -> exit code
}

func (f *fakeExec) Run(ctx context.Context, command executor.Command) (executor.Result, error) {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	f.mu.Unlock()

	if code, ok := f.failing[command.Argv[0]]; ok {
		return executor.Result{ExitCode: code, Stderr: "boom"},
			fmt.Errorf("command %q failed: exit status %d", command.Argv[0], code)
	}
	return executor.Result{Stdout: "ok", Duration: time.Millisecond}, nil
}

func (f *fakeExec) ran() []executor.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]executor.Command(nil), f.commands...)
}

type fakeInstaller struct {
	err       error
	installed []string
}

func (f *fakeInstaller) Install(ctx context.Context, env envspec.Resolved) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.installed = append(f.installed, env.Name)
	return env.Deps, nil
}

// recordingReporter captures the reporter callbacks for assertions.
type recordingReporter struct {
	mu         sync.Mutex
	started    []string
	envResults []EnvironmentResult
	suite      *SuiteResult
}

func (r *recordingReporter) ReportStart([]envspec.Resolved, Options) {}

func (r *recordingReporter) ReportEnvironmentStart(env envspec.Resolved) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, env.Name)
}

func (r *recordingReporter) ReportCommandResult(string, CommandResult) {}

func (r *recordingReporter) ReportEnvironmentResult(result EnvironmentResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envResults = append(r.envResults, result)
}

func (r *recordingReporter) ReportSuiteResult(result SuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suite = &result
}

func testEnv(t *testing.T, name string, commands ...[]string) envspec.Resolved {
	t.Helper()
	workDir := t.TempDir()
	return envspec.Resolved{
		Name:      name,
		EnvDir:    filepath.Join(workDir, name),
		DistDir:   filepath.Join(workDir, "dist"),
		Installer: []string{"true-installer"},
		Commands:  commands,
		// Commands in these tests are plain executables, not
		// env-installed tools.
		AllowlistExternals: []string{"*"},
		SkipInstall:        true,
	}
}

func TestRun_Sequential(t *testing.T) {
	exec := &fakeExec{}
	reporter := &recordingReporter{}
	r := New(exec, &fakeInstaller{}, reporter)

	envs := []envspec.Resolved{
		testEnv(t, "first", []string{"cmd-a"}),
		testEnv(t, "second", []string{"cmd-b"}, []string{"cmd-c"}),
	}
	result, err := r.Run(context.Background(), envs, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalEnvironments)
	assert.Equal(t, 2, result.PassedEnvironments)
	assert.False(t, result.Failed())
	assert.Equal(t, []string{"first", "second"}, reporter.started)

	ran := exec.ran()
	require.Len(t, ran, 3)
	assert.Equal(t, "cmd-a", ran[0].Argv[0])
	assert.Equal(t, "cmd-b", ran[1].Argv[0])
	assert.Equal(t, "cmd-c", ran[2].Argv[0])
}

func TestRun_CommandFailureStopsEnvironment(t *testing.T) {
	exec := &fakeExec{failing: map[string]int{"cmd-b": 2}}
	r := New(exec, &fakeInstaller{}, NewQuietReporter())

	env := testEnv(t, "unit", []string{"cmd-a"}, []string{"cmd-b"}, []string{"cmd-c"})
	result, err := r.Run(context.Background(), []envspec.Resolved{env}, Options{})
	require.NoError(t, err)

	require.Len(t, result.EnvironmentResults, 1)
	envResult := result.EnvironmentResults[0]
	assert.Equal(t, ResultFailed, envResult.Result)
	require.Len(t, envResult.CommandResults, 2, "cmd-c must not run after cmd-b failed")
	assert.Equal(t, ResultPassed, envResult.CommandResults[0].Result)
	assert.Equal(t, ResultFailed, envResult.CommandResults[1].Result)
	assert.Equal(t, 2, envResult.CommandResults[1].ExitCode)
}

func TestRun_FailFastSkipsRemaining(t *testing.T) {
	exec := &fakeExec{failing: map[string]int{"bad": 1}}
	r := New(exec, &fakeInstaller{}, NewQuietReporter())

	envs := []envspec.Resolved{
		testEnv(t, "broken", []string{"bad"}),
		testEnv(t, "never-runs", []string{"cmd"}),
	}
	result, err := r.Run(context.Background(), envs, Options{FailFast: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FailedEnvironments)
	assert.Equal(t, 1, result.SkippedEnvs)
	require.Len(t, result.EnvironmentResults, 2)
	assert.Equal(t, ResultSkipped, result.EnvironmentResults[1].Result)
}

func TestRun_Parallel(t *testing.T) {
	exec := &fakeExec{}
	r := New(exec, &fakeInstaller{}, NewQuietReporter())

	var envs []envspec.Resolved
	for i := 0; i < 6; i++ {
		envs = append(envs, testEnv(t, fmt.Sprintf("env%d", i), []string{"cmd"}))
	}
	result, err := r.Run(context.Background(), envs, Options{Parallel: 3})
	require.NoError(t, err)

	assert.Equal(t, 6, result.PassedEnvironments)
	assert.Len(t, result.EnvironmentResults, 6)
}

func TestRun_InstallFailure(t *testing.T) {
	r := New(&fakeExec{}, &fakeInstaller{err: errors.New("no such package")}, NewQuietReporter())

	env := testEnv(t, "unit", []string{"cmd"})
	env.SkipInstall = false
	result, err := r.Run(context.Background(), []envspec.Resolved{env}, Options{})
	require.NoError(t, err)

	require.Len(t, result.EnvironmentResults, 1)
	assert.Equal(t, ResultError, result.EnvironmentResults[0].Result)
	assert.Contains(t, result.EnvironmentResults[0].Error, "no such package")
	assert.Empty(t, result.EnvironmentResults[0].CommandResults, "commands must not run after install failure")
}

func TestRun_AllowlistRejection(t *testing.T) {
	exec := &fakeExec{}
	r := New(exec, &fakeInstaller{}, NewQuietReporter())

	env := testEnv(t, "unit", []string{"curl", "http://example.com"})
	env.AllowlistExternals = []string{"make"}
	result, err := r.Run(context.Background(), []envspec.Resolved{env}, Options{})
	require.NoError(t, err)

	require.Len(t, result.EnvironmentResults, 1)
	envResult := result.EnvironmentResults[0]
	assert.Equal(t, ResultError, envResult.Result)
	assert.Contains(t, envResult.Error, "not allowlisted")
	assert.Empty(t, exec.ran(), "rejected command must not execute")
}

func TestRun_PosargsReachCommands(t *testing.T) {
	exec := &fakeExec{}
	r := New(exec, &fakeInstaller{}, NewQuietReporter())

	env := testEnv(t, "unit", []string{"pytest", "{posargs}"})
	_, err := r.Run(context.Background(), []envspec.Resolved{env}, Options{Posargs: []string{"-k", "smoke"}})
	require.NoError(t, err)

	ran := exec.ran()
	require.Len(t, ran, 1)
	assert.Equal(t, []string{"pytest", "-k", "smoke"}, ran[0].Argv)
}

func TestRun_WritesReport(t *testing.T) {
	reportDir := filepath.Join(t.TempDir(), "reports")
	r := New(&fakeExec{}, &fakeInstaller{}, NewQuietReporter())

	env := testEnv(t, "unit", []string{"cmd"})
	_, err := r.Run(context.Background(), []envspec.Resolved{env}, Options{ReportPath: reportDir})
	require.NoError(t, err)

	entries, err := os.ReadDir(reportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "tenvctl-report-")
}

func TestChannelReporter(t *testing.T) {
	events := make(chan Event, 64)
	reporter := NewChannelReporter(events)
	r := New(&fakeExec{}, &fakeInstaller{}, reporter)

	env := testEnv(t, "unit", []string{"cmd"})
	_, err := r.Run(context.Background(), []envspec.Resolved{env}, Options{})
	require.NoError(t, err)

	var sawStart, sawEnvResult, sawSuite bool
	for event := range events {
		switch {
		case event.Start != nil:
			sawStart = true
			assert.Equal(t, []string{"unit"}, event.Start.Environments)
		case event.EnvironmentResult != nil:
			sawEnvResult = true
		case event.SuiteResult != nil:
			sawSuite = true
		}
	}
	assert.True(t, sawStart)
	assert.True(t, sawEnvResult)
	assert.True(t, sawSuite)
}
