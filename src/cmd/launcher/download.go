package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"terasology-launcher/src/download"
	"terasology-launcher/src/repository"
	"terasology-launcher/src/tui"
	"terasology-launcher/src/version"
)

var (
	downloadLine  string
	downloadBuild int
	downloadOmega bool
	downloadPlain bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the archive of a game build",
	Long: `Downloads the game archive of an engine build, or with --omega the
Omega distribution matched to it, into the launcher's download directory.
Ctrl+C cancels and removes the partial file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := repository.LineByName(downloadLine)
		if err != nil {
			return repository.WrapError(err)
		}

		ctx, stop := signalContext()
		defer stop()

		resolver, err := loadVersions(ctx)
		if err != nil {
			return err
		}
		rec, ok := resolver.GameVersionForBuild(line, downloadBuild)
		n, known := rec.Number()
		if !ok || !known {
			return repository.WrapError(fmt.Errorf("%s build %s: %w", line, buildLabel(downloadBuild), repository.ErrBuildNotFound))
		}

		job, build, kind := line.Name, n, repository.ArtifactGameZip
		if downloadOmega {
			if rec.CompanionBuildNumber == nil {
				return &repository.UserError{
					Message: fmt.Sprintf("No %s build is known for %s", line.CompanionJob, rec),
					Hint:    "Download the engine archive instead, or pick another build.",
				}
			}
			job, build, kind = line.CompanionJob, *rec.CompanionBuildNumber, repository.ArtifactOmegaZip
		}

		d := download.NewDownloader(&http.Client{}, appLog.With("download"))
		repo := newRepository()
		title := fmt.Sprintf("%s #%d", job, build)

		if downloadPlain {
			path, err := d.Artifact(ctx, repo, job, build, kind, appConfig.DownloadDir(), func(p download.Progress) {
				appLog.Debug("%s: %d%%", title, p.Percent)
			})
			if err != nil {
				return finishCancelled(path, err)
			}
			fmt.Println(path)
			return nil
		}

		dlCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		p := tea.NewProgram(tui.NewDownloadModel(title, cancel))
		go func() {
			path, err := d.Artifact(dlCtx, repo, job, build, kind, appConfig.DownloadDir(), func(pr download.Progress) {
				p.Send(tui.ProgressMsg{Written: pr.Written, Total: pr.Total, Percent: pr.Percent})
			})
			p.Send(tui.DoneMsg{Path: path, Err: finishCancelled(path, err)})
		}()

		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("download view: %w", err)
		}
		if m, ok := final.(tui.DownloadModel); ok {
			return m.Err()
		}
		return nil
	},
}

func init() {
	f := downloadCmd.Flags()
	f.StringVar(&downloadLine, "line", "stable", "job line: stable or unstable")
	f.IntVar(&downloadBuild, "build", version.BuildLatest, "engine build number, -1 for latest")
	f.BoolVar(&downloadOmega, "omega", false, "download the matching Omega distribution")
	f.BoolVar(&downloadPlain, "plain", false, "no progress view, print the path when done")
}

// finishCancelled removes the partial file of a cancelled download.
func finishCancelled(partPath string, err error) error {
	if !errors.Is(err, download.ErrCancelled) {
		return repository.WrapError(err)
	}
	if rmErr := os.Remove(partPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		appLog.Warn("Partial download %s could not be removed: %v", partPath, rmErr)
	}
	return err
}
