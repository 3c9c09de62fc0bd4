// Package config provides configuration management for the launcher.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultJenkinsURL     = "http://jenkins.terasology.org"
	DefaultJenkinsTimeout = 3 * time.Second
	DefaultLaunchTimeout  = 30 * time.Second
	DefaultLogLevel       = "info"
	DefaultJavaPath       = "java"
)

// Config holds the launcher configuration.
type Config struct {
	// LauncherDir holds the version cache and the pid file of a running game.
	LauncherDir string
	// GameDir is scanned for installed builds and receives downloads.
	GameDir string

	JenkinsURL     string
	JenkinsTimeout time.Duration

	// LaunchTimeout bounds the wait for the game's start confirmation.
	LaunchTimeout time.Duration

	LogLevel string
	JavaPath string
}

// LoadFromEnv loads configuration from environment variables.
// A .env file in the working directory is read first when present.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	launcherDir := os.Getenv("LAUNCHER_DIR")
	if launcherDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("LAUNCHER_DIR is not set and the home directory is unknown: %w", err)
		}
		launcherDir = filepath.Join(home, ".terasology-launcher")
	}

	gameDir := os.Getenv("GAME_DIR")
	if gameDir == "" {
		gameDir = filepath.Join(launcherDir, "games")
	}

	jenkinsTimeout, err := durationFromEnv("JENKINS_TIMEOUT", DefaultJenkinsTimeout)
	if err != nil {
		return nil, err
	}
	launchTimeout, err := durationFromEnv("LAUNCH_TIMEOUT", DefaultLaunchTimeout)
	if err != nil {
		return nil, err
	}

	return &Config{
		LauncherDir:    launcherDir,
		GameDir:        gameDir,
		JenkinsURL:     stringFromEnv("JENKINS_URL", DefaultJenkinsURL),
		JenkinsTimeout: jenkinsTimeout,
		LaunchTimeout:  launchTimeout,
		LogLevel:       stringFromEnv("LAUNCHER_LOG_LEVEL", DefaultLogLevel),
		JavaPath:       stringFromEnv("JAVA_PATH", DefaultJavaPath),
	}, nil
}

// MustLoadFromEnv loads configuration from environment variables and panics on error.
// This is useful for initialization in main() where configuration errors should be fatal.
func MustLoadFromEnv() *Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// CacheDir is where version records are persisted between runs.
func (c *Config) CacheDir() string {
	return filepath.Join(c.LauncherDir, "cache")
}

// DownloadDir receives build archives before extraction.
func (c *Config) DownloadDir() string {
	return filepath.Join(c.LauncherDir, "downloads")
}

func stringFromEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}
