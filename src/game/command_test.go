package game

import (
	"errors"
	"reflect"
	"testing"

	goversion "github.com/hashicorp/go-version"

	"terasology-launcher/src/install"
	"terasology-launcher/src/versioninfo"
)

func installation(engine string) install.Installation {
	return install.Installation{
		Root:      "/games/omega",
		EngineJar: "/games/omega/libs/engine-" + engine + ".jar",
		GameJar:   "/games/omega/libs/Terasology.jar",
		Info:      versioninfo.Info{JobName: "DistroOmega", BuildNumber: "42", EngineVersion: engine},
	}
}

func TestProvides(t *testing.T) {
	tests := []struct {
		engine  string
		feature Feature
		want    bool
	}{
		{"4.0.0", FeatureLWJGL3, false},
		{"4.1.0", FeatureLWJGL3, true},
		{"4.1.0-SNAPSHOT", FeatureLWJGL3, true},
		{"5.0.9", FeaturePicocli, false},
		{"5.1.0-SNAPSHOT", FeaturePicocli, true},
		{"5.3.0", FeatureJRE17, false},
		{"6.0.0", FeatureJRE17, true},
		{"7.2", FeatureJRE17, true},
	}

	for _, tt := range tests {
		t.Run(tt.engine+"/"+tt.feature.String(), func(t *testing.T) {
			v := goversion.Must(goversion.NewVersion(tt.engine))
			if got := Provides(tt.feature, v); got != tt.want {
				t.Errorf("Provides(%s, %s) = %v, want %v", tt.feature, tt.engine, got, tt.want)
			}
		})
	}

	if Provides(FeatureLWJGL3, nil) {
		t.Error("Provides() with unknown engine version should be false")
	}
}

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name     string
		engine   string
		settings Settings
		want     []string
	}{
		{
			name:     "legacy engine on linux",
			engine:   "4.0.0",
			settings: Settings{Platform: "linux", GameDataDir: "/data"},
			want:     []string{"-DlogOverrideLevel=INFO", "-jar", "/games/omega/libs/Terasology.jar", "-homedir=/data"},
		},
		{
			name:   "heap and log level",
			engine: "4.2.0",
			settings: Settings{
				Platform:    "windows",
				InitialHeap: Heap512M,
				MaxHeap:     Heap1536M,
				LogLevel:    LogDebug,
				JavaParams:  []string{"-XX:+UseG1GC"},
				GameParams:  []string{"-noSound"},
				GameDataDir: "/data",
			},
			want: []string{"-Xms512m", "-Xmx1536m", "-DlogOverrideLevel=DEBUG", "-XX:+UseG1GC", "-jar", "/games/omega/libs/Terasology.jar", "-homedir=/data", "-noSound"},
		},
		{
			name:     "mac before picocli",
			engine:   "4.1.0",
			settings: Settings{Platform: "darwin", GameDataDir: "/data"},
			want:     []string{"-DlogOverrideLevel=INFO", "-XstartOnFirstThread", "-Djava.awt.headless=true", "-jar", "/games/omega/libs/Terasology.jar", "-homedir=/data", "-noSplash"},
		},
		{
			name:     "mac with picocli snapshot",
			engine:   "5.1.0-SNAPSHOT",
			settings: Settings{Platform: "darwin", GameDataDir: "/data", GameParams: []string{"--permissive-security"}},
			want:     []string{"-DlogOverrideLevel=INFO", "-XstartOnFirstThread", "-Djava.awt.headless=true", "-jar", "/games/omega/libs/Terasology.jar", "--homedir=/data", "--permissive-security", "--no-splash"},
		},
		{
			name:     "picocli on linux without data dir",
			engine:   "5.2.0",
			settings: Settings{Platform: "linux", LogLevel: LogTrace},
			want:     []string{"-DlogOverrideLevel=TRACE", "-jar", "/games/omega/libs/Terasology.jar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := BuildCommand(installation(tt.engine), tt.settings)
			if err != nil {
				t.Fatalf("BuildCommand() error = %v", err)
			}
			if cmd.Path != "java" {
				t.Errorf("Path = %q, want java", cmd.Path)
			}
			if cmd.Dir != "/games/omega" {
				t.Errorf("Dir = %q, want installation root", cmd.Dir)
			}
			if !reflect.DeepEqual(cmd.Args, tt.want) {
				t.Errorf("Args =\n  %q\nwant\n  %q", cmd.Args, tt.want)
			}
		})
	}
}

func TestBuildCommand_JavaPath(t *testing.T) {
	cmd, err := BuildCommand(installation("5.0.0"), Settings{JavaPath: "/opt/jre/bin/java"})
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Path != "/opt/jre/bin/java" {
		t.Errorf("Path = %q", cmd.Path)
	}
}

func TestBuildCommand_Errors(t *testing.T) {
	noJar := installation("5.0.0")
	noJar.GameJar = ""

	tests := []struct {
		name  string
		inst  install.Installation
		check func(error) bool
	}{
		{"jre17 engine", installation("6.0.0"), func(err error) bool {
			var nse *VersionNotSupportedError
			return errors.As(err, &nse) && nse.Feature == FeatureJRE17
		}},
		{"jre17 snapshot", installation("6.0.0-SNAPSHOT"), func(err error) bool {
			var nse *VersionNotSupportedError
			return errors.As(err, &nse)
		}},
		{"no game jar", noJar, func(err error) bool { return errors.Is(err, ErrNoGameJar) }},
		{"no engine version", installation(""), func(err error) bool { return errors.Is(err, ErrUnknownEngineVersion) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCommand(tt.inst, Settings{})
			if err == nil || !tt.check(err) {
				t.Errorf("BuildCommand() error = %v", err)
			}
		})
	}
}

func TestParseJavaHeapSize(t *testing.T) {
	tests := []struct {
		in      string
		want    JavaHeapSize
		wantErr bool
	}{
		{"", HeapNotUsed, false},
		{"NOT_USED", HeapNotUsed, false},
		{"256m", Heap256M, false},
		{"1536m", Heap1536M, false},
		{"2G", Heap2G, false},
		{" 16g ", Heap16G, false},
		{"1024m", HeapNotUsed, true},
		{"3000m", HeapNotUsed, true},
	}

	for _, tt := range tests {
		got, err := ParseJavaHeapSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseJavaHeapSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseJavaHeapSize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHeapSizes(t *testing.T) {
	got32 := HeapSizes(4096, false)
	if want := []JavaHeapSize{HeapNotUsed, Heap256M, Heap512M, Heap768M, Heap1G}; !reflect.DeepEqual(got32, want) {
		t.Errorf("HeapSizes(4096, 32 bit) = %v, want %v", got32, want)
	}
	got64 := HeapSizes(2560, true)
	if last := got64[len(got64)-1]; last != Heap2560M {
		t.Errorf("largest 64 bit heap = %v, want 2560m", last)
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{"": LogDefault, "debug": LogDebug, "WARN": LogWarn, "trace": LogTrace} {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Error("ParseLogLevel(verbose) expected error")
	}
}
