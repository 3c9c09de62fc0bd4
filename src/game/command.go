package game

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"terasology-launcher/src/install"
)

// BundledJavaVersion is the Java release the launcher ships with.
const BundledJavaVersion = 11

var (
	ErrNoGameJar            = errors.New("installation has no game jar")
	ErrUnknownEngineVersion = errors.New("engine version of the installation is unknown")
)

// VersionNotSupportedError means the installed engine needs a newer runtime
// than the launcher provides.
type VersionNotSupportedError struct {
	Engine  string
	Feature Feature
}

func (e *VersionNotSupportedError) Error() string {
	return fmt.Sprintf("engine %s requires %s (since %s), the launcher provides Java %d",
		e.Engine, e.Feature, e.Feature.Since(), BundledJavaVersion)
}

// Command is a fully resolved process invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// BuildCommand assembles the command line for inst. Nothing is started.
func BuildCommand(inst install.Installation, s Settings) (Command, error) {
	if inst.GameJar == "" {
		return Command{}, fmt.Errorf("%s: %w", inst.Root, ErrNoGameJar)
	}
	engine, err := inst.Info.EngineSemver()
	if err != nil {
		return Command{}, fmt.Errorf("%s: %w: %v", inst.Root, ErrUnknownEngineVersion, err)
	}
	if Provides(FeatureJRE17, engine) {
		return Command{}, &VersionNotSupportedError{Engine: engine.String(), Feature: FeatureJRE17}
	}

	platform := s.Platform
	if platform == "" {
		platform = runtime.GOOS
	}
	macLWJGL3 := platform == "darwin" && Provides(FeatureLWJGL3, engine)

	cmd := Command{Path: s.JavaPath, Dir: inst.Root}
	if cmd.Path == "" {
		cmd.Path = "java"
	}

	if s.InitialHeap.Used() {
		cmd.Args = append(cmd.Args, "-Xms"+s.InitialHeap.String())
	}
	if s.MaxHeap.Used() {
		cmd.Args = append(cmd.Args, "-Xmx"+s.MaxHeap.String())
	}
	cmd.Args = append(cmd.Args, "-DlogOverrideLevel="+s.LogLevel.override())
	if macLWJGL3 {
		cmd.Args = append(cmd.Args, "-XstartOnFirstThread", "-Djava.awt.headless=true")
	}
	cmd.Args = append(cmd.Args, s.JavaParams...)
	cmd.Args = append(cmd.Args, "-jar", inst.GameJar)

	if s.GameDataDir != "" {
		dataDir, err := filepath.Abs(s.GameDataDir)
		if err != nil {
			return Command{}, fmt.Errorf("game data directory: %w", err)
		}
		cmd.Args = append(cmd.Args, homedirFlag(engine)+dataDir)
	}
	cmd.Args = append(cmd.Args, s.GameParams...)

	if macLWJGL3 {
		if Provides(FeaturePicocli, engine) {
			cmd.Args = append(cmd.Args, "--no-splash")
		} else {
			cmd.Args = append(cmd.Args, "-noSplash")
		}
	}
	return cmd, nil
}

func homedirFlag(engine *goversion.Version) string {
	if Provides(FeaturePicocli, engine) {
		return "--homedir="
	}
	return "-homedir="
}
