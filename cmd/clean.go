package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tenvctl/internal/config"
	"tenvctl/internal/envspec"
	"tenvctl/pkg/logging"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [environment...]",
		Short: "Remove environment work directories",
		Long: `Removes the work directories of the named environments, forcing a fresh
dependency install on the next run. Without arguments the whole work
directory is removed, including the distribution directory.`,
		RunE: runClean,
	}
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(args) == 0 {
		logging.Info("Clean", "removing work directory %s", cfg.WorkDir)
		if err := os.RemoveAll(cfg.WorkDir); err != nil {
			return fmt.Errorf("failed to remove work directory: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cfg.WorkDir)

		// The dist directory is independently configurable and may live
		// outside the work directory.
		logging.Info("Clean", "removing dist directory %s", cfg.DistDir)
		if err := os.RemoveAll(cfg.DistDir); err != nil {
			return fmt.Errorf("failed to remove dist directory: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cfg.DistDir)
		return nil
	}

	environments, err := envspec.ResolveSelection(cfg, args)
	if err != nil {
		return err
	}
	for _, env := range environments {
		logging.Info("Clean", "removing environment directory %s", env.EnvDir)
		if err := os.RemoveAll(env.EnvDir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", env.EnvDir, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", env.EnvDir)
	}
	return nil
}
