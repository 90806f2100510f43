package cmd

import (
	"context"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"tenvctl/pkg/logging"
)

// githubRepoSlug is the repository releases are fetched from.
const githubRepoSlug = "splunk/tenvctl"

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update tenvctl to the latest release",
		Long: `Checks for the latest release of tenvctl on GitHub and, if a newer
version is available, downloads it and replaces the current binary in
place.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	currentVersion := rootCmd.Version
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version (%q); install a released build first", currentVersion)
	}

	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}

	logging.Info("SelfUpdate", "checking %s for releases newer than %s", githubRepoSlug, currentVersion)
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(githubRepoSlug))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", githubRepoSlug)
	}
	if latest.LessOrEqual(currentVersion) {
		fmt.Printf("tenvctl %s is already the latest version\n", currentVersion)
		return nil
	}

	executable, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate the running executable: %w", err)
	}

	fmt.Printf("Updating tenvctl %s -> %s\n", currentVersion, latest.Version())
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, executable); err != nil {
		return fmt.Errorf("failed to update to %s: %w", latest.Version(), err)
	}

	fmt.Printf("Successfully updated to tenvctl %s\n", latest.Version())
	return nil
}
