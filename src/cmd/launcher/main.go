// Package main is the command line front end of the Terasology launcher.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"terasology-launcher/src/config"
	"terasology-launcher/src/game"
	"terasology-launcher/src/install"
	"terasology-launcher/src/jenkins"
	"terasology-launcher/src/logger"
	"terasology-launcher/src/mcp"
	"terasology-launcher/src/version"
)

const appVersion = "0.1.0"

var (
	appConfig *config.Config
	appLog    *logger.ZerologLogger

	flagLauncherDir string
	flagGameDir     string
	flagJenkinsURL  string
	flagLogLevel    string
)

var rootCmd = &cobra.Command{
	Use:     "launcher",
	Short:   "Terasology launcher - find, download and start game builds",
	Version: appVersion,
	Long: `Resolves the Terasology builds published on Jenkins, matches every engine
build with the Omega distribution that bundles it, tracks installed builds
and starts them.

Configuration comes from the environment (or a .env file):
  LAUNCHER_DIR, GAME_DIR, JENKINS_URL, JENKINS_TIMEOUT, LAUNCH_TIMEOUT,
  LAUNCHER_LOG_LEVEL, JAVA_PATH
Flags override the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromEnv()
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		flags := cmd.Flags()
		if flags.Changed("launcher-dir") {
			cfg.LauncherDir = flagLauncherDir
		}
		if flags.Changed("game-dir") {
			cfg.GameDir = flagGameDir
		}
		if flags.Changed("jenkins-url") {
			cfg.JenkinsURL = flagJenkinsURL
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = flagLogLevel
		}
		appConfig = cfg
		appLog = logger.NewConsoleLogger(cfg.LogLevel)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a game started by the launcher is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, running, err := game.CheckPidFile(pidFile())
		if err != nil {
			return err
		}
		if running {
			fmt.Printf("Game running (pid %d)\n", pid)
		} else {
			fmt.Println("No game running")
		}
		return nil
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the version lists as MCP tools on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := mcp.NewServer(newResolver(), appConfig.LauncherDir, appConfig.GameDir, appLog.With("mcp"), appVersion)
		return srv.Run()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagLauncherDir, "launcher-dir", "", "launcher data directory (cache, pid file, downloads)")
	pf.StringVar(&flagGameDir, "game-dir", "", "directory scanned for installed builds")
	pf.StringVar(&flagJenkinsURL, "jenkins-url", "", "Jenkins base URL")
	pf.StringVar(&flagLogLevel, "log-level", "", "launcher log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(versionsCmd, startCmd, downloadCmd, deleteCmd, statusCmd, mcpCmd)
}

func newRepository() *jenkins.Client {
	return jenkins.NewClient(appConfig.JenkinsURL, appConfig.JenkinsTimeout, appLog.With("jenkins"))
}

func newScanner() *install.Scanner {
	return install.NewScanner(appLog.With("install"))
}

func newResolver() *version.Resolver {
	return version.NewResolver(newRepository(), newScanner(), appLog.With("versions"))
}

func pidFile() string {
	return filepath.Join(appConfig.LauncherDir, game.PidFileName)
}

// signalContext is cancelled on the first interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
