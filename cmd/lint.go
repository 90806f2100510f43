package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tenvctl/internal/config"
	"tenvctl/internal/executor"
	"tenvctl/internal/lint"
)

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [path...]",
		Short: "Run the configured linter over the given paths",
		Long: `Runs the linter declared in the configuration's lint section, applying
the configured excludes, extension set, application import names and
line-length limit. Paths default to the current directory.`,
		RunE: runLint,
	}
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	result, err := lint.Run(cmd.Context(), executor.NewRunner(), cfg.Lint, args)
	if result.Stdout != "" {
		fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
	}
	if err != nil {
		if result.ExitCode > 0 {
			return fmt.Errorf("lint found issues (exit code %d)", result.ExitCode)
		}
		return fmt.Errorf("failed to run linter: %w", err)
	}
	return nil
}
