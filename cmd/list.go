package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tenvctl/internal/config"
	"tenvctl/internal/envspec"
)

var listOutput string

// environmentInfo is the machine-readable list entry.
type environmentInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Deps        []string `json:"deps,omitempty" yaml:"deps,omitempty"`
	Commands    int      `json:"commands" yaml:"commands"`
	Default     bool     `json:"default" yaml:"default"`
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the declared test environments",
		Long: `Lists every environment declared in the configuration with its resolved
dependencies and command count. Environments in the envlist are marked
as defaults.`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
	cmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format (table, json, yaml)")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	defaults := make(map[string]bool, len(cfg.Envlist))
	for _, name := range cfg.Envlist {
		defaults[name] = true
	}

	infos := make([]environmentInfo, 0, len(cfg.Environments))
	for _, env := range cfg.Environments {
		resolved, err := envspec.Resolve(cfg, env.Name)
		if err != nil {
			return err
		}
		infos = append(infos, environmentInfo{
			Name:        env.Name,
			Description: resolved.Description,
			Deps:        resolved.Deps,
			Commands:    len(resolved.Commands),
			Default:     defaults[env.Name],
		})
	}

	switch listOutput {
	case "json":
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(infos)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	case "table":
		renderEnvironmentTable(cmd, infos)
		return nil
	default:
		return fmt.Errorf("invalid output format %q, must be table, json or yaml", listOutput)
	}
}

func renderEnvironmentTable(cmd *cobra.Command, infos []environmentInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("DEFAULT"),
		text.FgHiCyan.Sprint("DEPS"),
		text.FgHiCyan.Sprint("COMMANDS"),
		text.FgHiCyan.Sprint("DESCRIPTION"),
	})

	for _, info := range infos {
		marker := ""
		if info.Default {
			marker = text.FgGreen.Sprint("✔")
		}
		t.AppendRow(table.Row{
			info.Name,
			marker,
			truncateCell(strings.Join(info.Deps, ", "), 40),
			info.Commands,
			truncateCell(info.Description, 45),
		})
	}
	t.Render()
}

func truncateCell(value string, limit int) string {
	if runewidth.StringWidth(value) <= limit {
		return value
	}
	return runewidth.Truncate(value, limit, "") + text.FgHiBlack.Sprint("...")
}
