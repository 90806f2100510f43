// Package lint renders the external linter invocation from the lint
// section of the configuration and runs it. The linter itself is an
// external tool; tenvctl only owns the translation from configuration keys
// to command-line flags.
package lint

import (
	"context"
	"fmt"
	"strings"

	"tenvctl/internal/config"
	"tenvctl/internal/executor"
	"tenvctl/pkg/logging"
)

// BuildArgv renders the full linter command line for the given paths.
// Paths default to the current directory when empty.
func BuildArgv(cfg config.LintConfig, paths []string) []string {
	linter := cfg.Linter
	if len(linter) == 0 {
		linter = []string{"flake8"}
	}

	argv := append([]string{}, linter...)
	if len(cfg.Exclude) > 0 {
		argv = append(argv, "--exclude="+strings.Join(cfg.Exclude, ","))
	}
	if len(cfg.EnableExtensions) > 0 {
		argv = append(argv, "--enable-extensions="+strings.Join(cfg.EnableExtensions, ","))
	}
	if len(cfg.ApplicationImportNames) > 0 {
		argv = append(argv, "--application-import-names="+strings.Join(cfg.ApplicationImportNames, ","))
	}
	if cfg.MaxLineLength > 0 {
		argv = append(argv, fmt.Sprintf("--max-line-length=%d", cfg.MaxLineLength))
	}

	if len(paths) == 0 {
		paths = []string{"."}
	}
	return append(argv, paths...)
}

// Run executes the linter and returns its captured result. A non-zero
// exit (style violations found) comes back as an error from the runner,
// with the findings in Result.Stdout.
func Run(ctx context.Context, exec executor.Runner, cfg config.LintConfig, paths []string) (executor.Result, error) {
	argv := BuildArgv(cfg, paths)
	logging.Debug("Lint", "invoking %s", strings.Join(argv, " "))
	return exec.Run(ctx, executor.Command{Argv: argv})
}
