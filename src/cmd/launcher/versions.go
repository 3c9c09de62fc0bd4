package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"terasology-launcher/src/repository"
	"terasology-launcher/src/tui"
	"terasology-launcher/src/version"
)

var (
	versionsLine  string
	versionsBuild int
	versionsWidth int
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the known game versions",
	Long: `Loads the version lists from Jenkins, the local cache and the game
directory, then prints one table per job line.

Examples:
  launcher versions
  launcher versions --line unstable
  launcher versions --line stable --build 81`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lines := repository.Lines()
		if versionsLine != "" {
			line, err := repository.LineByName(versionsLine)
			if err != nil {
				return repository.WrapError(err)
			}
			lines = []repository.JobLine{line}
		}

		ctx, stop := signalContext()
		defer stop()

		resolver, err := loadVersions(ctx)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("build") {
			rec, ok := resolver.GameVersionForBuild(lines[0], versionsBuild)
			if !ok {
				return repository.WrapError(fmt.Errorf("%s #%d: %w", lines[0], versionsBuild, repository.ErrBuildNotFound))
			}
			fmt.Println(tui.RenderVersionDetail(rec, versionsWidth, nil))
			return nil
		}

		for _, line := range lines {
			title := fmt.Sprintf("%s (%s)", line.Name, stability(line))
			fmt.Println(tui.RenderVersionTable(title, resolver.GameVersionList(line), versionsWidth, nil))
		}
		return nil
	},
}

func init() {
	versionsCmd.Flags().StringVar(&versionsLine, "line", "", "job line: stable or unstable (default: all)")
	versionsCmd.Flags().IntVar(&versionsBuild, "build", version.BuildLatest, "show one build in detail, -1 for latest")
	versionsCmd.Flags().IntVar(&versionsWidth, "width", 100, "table width")
}

func loadVersions(ctx context.Context) (*version.Resolver, error) {
	resolver := newResolver()
	if err := resolver.LoadGameVersions(ctx, appConfig.LauncherDir, appConfig.GameDir); err != nil {
		return nil, err
	}
	return resolver, nil
}

func stability(line repository.JobLine) string {
	if line.Stable {
		return "stable"
	}
	return "unstable"
}
