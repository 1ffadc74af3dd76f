package cmd

import (
	"fmt"

	"github.com/smazurov/camctl/internal/updater"
	"github.com/smazurov/camctl/internal/version"
	"github.com/spf13/cobra"
)

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var (
		repository string
		prerelease bool
		checkOnly  bool
		rollback   bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update camctl to the latest release",
		Long:  `Checks GitHub releases for a newer version and replaces the running binary. The previous binary is kept as a backup for --rollback.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := updater.New(repository, prerelease)
			if err != nil {
				return err
			}

			if rollback {
				if err := u.Rollback(); err != nil {
					return err
				}
				fmt.Printf("rolled back to %s\n", u.BackupVersion())
				return nil
			}

			info, err := u.Check(cmd.Context())
			if err != nil {
				return err
			}
			if !info.UpdateAvailable {
				fmt.Printf("%s is up to date\n", info.CurrentVersion)
				return nil
			}
			fmt.Printf("update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
			if checkOnly {
				return nil
			}

			installed, err := u.Apply(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("updated to %s\n", installed)
			return nil
		},
	}

	cmd.Flags().StringVar(&repository, "repo", "smazurov/camctl", "GitHub repository to update from")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Consider prereleases")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check, do not install")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Restore the previous binary")
	return cmd
}

// CreateVersionCmd creates the version command.
func CreateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		Run: func(_ *cobra.Command, _ []string) {
			info := version.Get()
			fmt.Printf("camctl %s\n", info.Version)
			fmt.Printf("  commit    : %s\n", info.GitCommit)
			fmt.Printf("  built     : %s\n", info.BuildDate)
			fmt.Printf("  go        : %s (%s)\n", info.GoVersion, info.Platform)
		},
	}
}
