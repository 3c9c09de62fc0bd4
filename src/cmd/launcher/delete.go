package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"terasology-launcher/src/game"
	"terasology-launcher/src/repository"
	"terasology-launcher/src/version"
)

var (
	deleteLine  string
	deleteBuild int
	deleteYes   bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an installed game build",
	Long: `Removes the installation directory of a build from the game directory.
Without --yes only the directory that would be removed is printed.

Examples:
  launcher delete --line unstable --build 2145
  launcher delete --line unstable --build 2145 --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := repository.LineByName(deleteLine)
		if err != nil {
			return repository.WrapError(err)
		}

		ctx, stop := signalContext()
		defer stop()

		if pid, running, _ := game.CheckPidFile(pidFile()); running {
			return &repository.UserError{
				Message: fmt.Sprintf("A game is running (pid %d)", pid),
				Hint:    "Close the game before deleting installations.",
				Err:     game.ErrAlreadyRunning,
			}
		}

		resolver, err := loadVersions(ctx)
		if err != nil {
			return err
		}
		rec, ok := resolver.GameVersionForBuild(line, deleteBuild)
		if !ok || !rec.IsInstalled() {
			return &repository.UserError{
				Message: fmt.Sprintf("%s build %s is not installed", line, buildLabel(deleteBuild)),
				Hint:    "List the installed builds with `launcher versions`.",
			}
		}

		if !deleteYes {
			fmt.Printf("Would delete %s in %s (rerun with --yes)\n", rec, rec.InstallationPath)
			return nil
		}

		inst, err := newScanner().Delete(ctx, appConfig.GameDir, rec.InstallationPath)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %s #%d from %s\n", inst.Line, inst.BuildNumber, inst.Root)
		return nil
	},
}

func init() {
	f := deleteCmd.Flags()
	f.StringVar(&deleteLine, "line", "stable", "job line: stable or unstable")
	f.IntVar(&deleteBuild, "build", version.BuildLatest, "engine build number, -1 for latest")
	f.BoolVar(&deleteYes, "yes", false, "really delete")
}
