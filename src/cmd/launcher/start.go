package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"terasology-launcher/src/game"
	"terasology-launcher/src/repository"
	"terasology-launcher/src/version"
)

var (
	startLine       string
	startBuild      int
	startHeapMin    string
	startHeapMax    string
	startGameLog    string
	startDataDir    string
	startJavaParams []string
	startGameParams []string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an installed game build",
	Long: `Starts an installed build and waits until the engine reports that its
initialization completed. The launcher keeps running until the game exits;
Ctrl+C stops the game.

Examples:
  launcher start
  launcher start --line unstable --build 2145 --heap-max 4g`,
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := repository.LineByName(startLine)
		if err != nil {
			return repository.WrapError(err)
		}
		settings, err := startSettings()
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		if pid, running, _ := game.CheckPidFile(pidFile()); running {
			return &repository.UserError{
				Message: fmt.Sprintf("A game is already running (pid %d)", pid),
				Hint:    "Close it first or check `launcher status`.",
				Err:     game.ErrAlreadyRunning,
			}
		}

		resolver, err := loadVersions(ctx)
		if err != nil {
			return err
		}
		rec, ok := resolver.GameVersionForBuild(line, startBuild)
		if !ok || !rec.IsInstalled() {
			return &repository.UserError{
				Message: fmt.Sprintf("%s build %s is not installed", line, buildLabel(startBuild)),
				Hint:    "Download it with `launcher download` and extract it into the game directory.",
			}
		}

		inst, err := newScanner().Locate(ctx, rec.InstallationPath)
		if err != nil {
			return err
		}

		launcher := game.NewLauncher(appLog.With("game"),
			game.WithConfirmTimeout(appConfig.LaunchTimeout),
			game.WithPidFile(pidFile()),
		)
		run, err := launcher.Start(ctx, inst, settings)
		if err != nil {
			var nse *game.VersionNotSupportedError
			if errors.As(err, &nse) {
				return &repository.UserError{
					Message: fmt.Sprintf("%s can not be started by this launcher", rec),
					Hint:    "Builds for Java 17 need a newer launcher.",
					Err:     err,
				}
			}
			return err
		}

		fmt.Printf("Starting %s\n", rec)
		outcome, err := run.Wait(ctx)
		msg, ok := startedMessage(outcome, run.Pid(), appConfig.LaunchTimeout)
		if !ok {
			return err
		}
		fmt.Println(msg)

		<-run.Done()
		fmt.Printf("Game exited with code %d\n", run.ExitCode())
		return nil
	},
}

func init() {
	f := startCmd.Flags()
	f.StringVar(&startLine, "line", "stable", "job line: stable or unstable")
	f.IntVar(&startBuild, "build", version.BuildLatest, "engine build number, -1 for latest")
	f.StringVar(&startHeapMin, "heap-min", "", "initial heap size, e.g. 512m")
	f.StringVar(&startHeapMax, "heap-max", "", "maximum heap size, e.g. 4g")
	f.StringVar(&startGameLog, "game-log-level", "DEFAULT", "game log level: DEFAULT, ERROR, WARN, INFO, DEBUG, TRACE")
	f.StringVar(&startDataDir, "data-dir", "", "game data directory passed as homedir")
	f.StringSliceVar(&startJavaParams, "java-param", nil, "extra JVM parameter (repeatable)")
	f.StringSliceVar(&startGameParams, "game-param", nil, "extra game parameter (repeatable)")
}

func startSettings() (game.Settings, error) {
	minHeap, err := game.ParseJavaHeapSize(startHeapMin)
	if err != nil {
		return game.Settings{}, err
	}
	maxHeap, err := game.ParseJavaHeapSize(startHeapMax)
	if err != nil {
		return game.Settings{}, err
	}
	if minHeap.Used() && maxHeap.Used() && minHeap > maxHeap {
		return game.Settings{}, fmt.Errorf("initial heap %s is larger than maximum heap %s", minHeap, maxHeap)
	}
	level, err := game.ParseLogLevel(startGameLog)
	if err != nil {
		return game.Settings{}, err
	}
	return game.Settings{
		JavaPath:    appConfig.JavaPath,
		InitialHeap: minHeap,
		MaxHeap:     maxHeap,
		LogLevel:    level,
		JavaParams:  startJavaParams,
		GameParams:  startGameParams,
		GameDataDir: startDataDir,
	}, nil
}

// startedMessage describes a game that got past spawning. ok is false for
// outcomes where the game is not running.
func startedMessage(o game.Outcome, pid int, timeout time.Duration) (msg string, ok bool) {
	switch o.State {
	case game.ConfirmedRunning:
		return fmt.Sprintf("Game is running (pid %d)", pid), true
	case game.TimedOut:
		return fmt.Sprintf("No start confirmation after %s, the game keeps running (pid %d)", timeout, pid), true
	default:
		return "", false
	}
}

func buildLabel(n int) string {
	if n == version.BuildLatest {
		return "latest"
	}
	return fmt.Sprintf("#%d", n)
}
