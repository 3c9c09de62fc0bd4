// Demo program to showcase the launcher views with a realistic dataset.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"terasology-launcher/src/repository"
	"terasology-launcher/src/tui"
	"terasology-launcher/src/version"
	"terasology-launcher/src/versioninfo"
)

func main() {
	records := generateSampleData()

	fmt.Println(tui.RenderVersionTable("TerasologyStable (stable)", records, 100, nil))
	fmt.Println(tui.RenderVersionDetail(records[1], 100, nil))

	fmt.Println("Simulating a download...")
	time.Sleep(500 * time.Millisecond)

	p := tea.NewProgram(tui.NewDownloadModel("DistroOmegaRelease #1201", func() {}))
	go simulateDownload(p, 48<<20)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func simulateDownload(p *tea.Program, total int64) {
	const step = 2 << 20
	for written := int64(0); written < total; written += step {
		p.Send(tui.ProgressMsg{Written: written, Total: total, Percent: int(written * 100 / total)})
		time.Sleep(80 * time.Millisecond)
	}
	p.Send(tui.DoneMsg{Path: "downloads/DistroOmegaRelease_1201_omega-zip.zip"})
}

func ptr[T any](v T) *T { return &v }

func generateSampleData() []version.Record {
	line := repository.Stable.Name
	installed := version.Record{
		Line:                 line,
		BuildNumber:          ptr(84),
		CompanionBuildNumber: ptr(1201),
		Successful:           ptr(true),
		ChangeLog: []string{
			"Bump gestalt to 7.1.0",
			"Fix chunk mesh memory leak on region unload",
		},
		Info: &versioninfo.Info{
			DisplayVersion: "alpha-22",
			EngineVersion:  "5.3.0",
			BuildNumber:    "84",
			JobName:        line,
		},
		InstallationPath: "/home/player/Terasology/games/84",
		GameJar:          "/home/player/Terasology/games/84/libs/Terasology.jar",
	}
	return []version.Record{
		installed.AsLatest(),
		installed,
		{
			Line:                 line,
			BuildNumber:          ptr(83),
			CompanionBuildNumber: ptr(1199),
			Successful:           ptr(true),
			ChangeLog:            []string{"Update translations"},
			Info:                 &versioninfo.Info{DisplayVersion: "alpha-21", EngineVersion: "5.2.1"},
		},
		{
			Line:        line,
			BuildNumber: ptr(82),
			Successful:  ptr(false),
			ChangeLog:   []string{version.NoChangesEntry},
		},
		{
			Line:                 line,
			BuildNumber:          ptr(81),
			CompanionBuildNumber: ptr(1190),
			Successful:           ptr(true),
			ChangeLog:            []string{"Release alpha-21"},
			Info:                 &versioninfo.Info{DisplayVersion: "alpha-21", EngineVersion: "5.2.0"},
		},
	}
}
