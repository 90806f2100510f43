package cmd

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tenvctl/internal/config"
)

var configShowCopy bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective tenvctl configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after merging all layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}
			if configShowCopy {
				if err := clipboard.WriteAll(string(data)); err != nil {
					return fmt.Errorf("failed to copy configuration to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Effective configuration copied to clipboard.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&configShowCopy, "copy", false, "Copy the rendered configuration to the clipboard instead of printing it")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and report the environment list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootConfigPath)
			if err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration valid: %d environment(s), envlist %v\n",
				len(cfg.Environments), cfg.Envlist)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration files consulted, in merge order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userPath, err := config.UserConfigPath()
			if err != nil {
				return err
			}
			projectPath, err := config.ProjectConfigPath()
			if err != nil {
				return err
			}
			printConfigLayer(cmd, "user", userPath)
			printConfigLayer(cmd, "project", projectPath)
			if rootConfigPath != "" {
				printConfigLayer(cmd, "explicit", rootConfigPath)
			}
			return nil
		},
	}
}

func printConfigLayer(cmd *cobra.Command, layer, path string) {
	status := "missing"
	if _, err := os.Stat(path); err == nil {
		status = "present"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s (%s)\n", layer, path, status)
}
