package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

var checkOnly bool

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:         "update",
	Short:       "Update spctl to the latest release",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipClientAnnotation: ""},
	RunE:        runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only check whether a newer release exists")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	current, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Errorf("cannot update a development build (%s): %w", version, err)
	}

	logger.Debug().Str("repository", cfg.Update.Repository).Str("current", current.String()).Msg("Checking for updates")
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(cfg.Update.Repository))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		fmt.Fprintf(out, "No release found for %s/%s in %s\n", runtime.GOOS, runtime.GOARCH, cfg.Update.Repository)
		return nil
	}

	if latest.LessOrEqual(current.String()) {
		fmt.Fprintf(out, "spctl %s is up to date\n", current)
		return nil
	}
	if checkOnly {
		fmt.Fprintf(out, "spctl %s is available (current %s)\n", latest.Version(), current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	logger.Info().Str("version", latest.Version()).Msg("Updated spctl")
	fmt.Fprintf(out, "Updated to %s\n", latest.Version())
	return nil
}
