package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "tenvctl" {
		t.Errorf("Expected Use to be 'tenvctl', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}

	// Same template as in Execute()
	testCmd.SetVersionTemplate(`{{printf "tenvctl version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)

	testCmd.SetArgs([]string{"--version"})
	err := testCmd.Execute()
	if err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	output := buf.String()
	expected := "tenvctl version 1.0.0\n"
	if output != expected {
		t.Errorf("Expected version output %q, got %q", expected, output)
	}
}

func TestSubcommands(t *testing.T) {
	commands := rootCmd.Commands()

	expectedCommands := []string{"run", "list", "config", "lint", "clean", "serve", "version", "self-update"}
	foundCommands := make(map[string]bool)

	for _, cmd := range commands {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !foundCommands[expected] {
			t.Errorf("Expected subcommand %s to be registered", expected)
		}
	}
}

func TestPersistentFlags(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("Expected persistent --config flag to be registered")
	}
	if rootCmd.PersistentFlags().Lookup("debug") == nil {
		t.Error("Expected persistent --debug flag to be registered")
	}
}

func TestRootCommandHelp(t *testing.T) {
	var buf bytes.Buffer

	// Fresh command so the global one is untouched
	testRootCmd := &cobra.Command{
		Use:   "tenvctl",
		Short: "Run project test environments from declarative configuration",
		Long: `tenvctl reads a declarative configuration describing isolated test
environments (dependencies, commands, environment variables, external
command allowlists) and runs them sequentially or in parallel, each in
its own work directory.`,
		SilenceUsage: true,
	}

	testRootCmd.SetOut(&buf)
	testRootCmd.SetArgs([]string{"--help"})

	err := testRootCmd.Execute()
	if err != nil {
		t.Fatalf("Error executing help command: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "tenvctl") {
		t.Errorf("Help output should contain 'tenvctl'. Got: %q", output)
	}

	if !strings.Contains(output, "declarative configuration") {
		t.Errorf("Help output should contain the long description. Got: %q", output)
	}
}
