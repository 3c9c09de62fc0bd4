package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"terasology-launcher/src/logger"
	"terasology-launcher/src/repository"
	"terasology-launcher/src/version"
	"terasology-launcher/src/versioninfo"
)

type fakeSource struct {
	mu      sync.Mutex
	loads   int
	loadErr error
	lists   map[string][]version.Record
}

func (f *fakeSource) LoadGameVersions(ctx context.Context, launcherDir, gameDir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.loadErr
}

func (f *fakeSource) GameVersionList(line repository.JobLine) []version.Record {
	return f.lists[line.Name]
}

func (f *fakeSource) GameVersionForBuild(line repository.JobLine, n int) (version.Record, bool) {
	for _, rec := range f.lists[line.Name] {
		b, ok := rec.Number()
		if (n == version.BuildLatest && rec.Latest) || (ok && !rec.Latest && b == n) {
			return rec, true
		}
	}
	return version.Record{}, false
}

func intPtr(n int) *int { return &n }

func newSource() *fakeSource {
	rec := version.Record{
		Line:                 repository.Unstable.Name,
		BuildNumber:          intPtr(2145),
		CompanionBuildNumber: intPtr(1201),
		ChangeLog:            []string{"Fix chunk cache"},
		Info:                 &versioninfo.Info{DisplayVersion: "alpha-22", EngineVersion: "5.3.0"},
		InstallationPath:     "/games/2145",
		GameJar:              "/games/2145/libs/Terasology.jar",
	}
	latest := rec
	latest.Latest = true
	return &fakeSource{lists: map[string][]version.Record{repository.Unstable.Name: {latest, rec}}}
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T", result.Content[0])
	}
	return text.Text, result.IsError
}

func TestListVersions(t *testing.T) {
	src := newSource()
	srv := NewServer(src, "/launcher", "/games", logger.NewSilentLogger(), "test")

	text, isErr := call(t, srv.handleListVersions, map[string]any{"line": "unstable"})
	if isErr {
		t.Fatalf("list_versions failed: %s", text)
	}

	var list VersionList
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		t.Fatal(err)
	}
	if list.Line != repository.Unstable.Name || len(list.Versions) != 2 {
		t.Fatalf("list = %+v", list)
	}
	first := list.Versions[0]
	if !first.Latest || *first.Build != 2145 || *first.OmegaBuild != 1201 || !first.Installed || first.DisplayVersion != "alpha-22" {
		t.Errorf("latest view = %+v", first)
	}
	if src.loads != 1 {
		t.Errorf("loads = %d, want 1", src.loads)
	}

	call(t, srv.handleListVersions, map[string]any{"line": "unstable"})
	if src.loads != 1 {
		t.Errorf("second call should reuse the loaded lists, loads = %d", src.loads)
	}
	call(t, srv.handleListVersions, map[string]any{"line": "unstable", "refresh": true})
	if src.loads != 2 {
		t.Errorf("refresh should reload, loads = %d", src.loads)
	}
}

func TestListVersions_ReloadsWhenStale(t *testing.T) {
	src := newSource()
	srv := NewServer(src, "/launcher", "/games", logger.NewSilentLogger(), "test")
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return now }

	call(t, srv.handleListVersions, map[string]any{"line": "unstable"})
	now = now.Add(ReloadAfter + time.Second)
	call(t, srv.handleListVersions, map[string]any{"line": "unstable"})

	if src.loads != 2 {
		t.Errorf("loads = %d, want 2", src.loads)
	}
}

func TestListVersions_Errors(t *testing.T) {
	src := newSource()
	srv := NewServer(src, "/launcher", "/games", logger.NewSilentLogger(), "test")

	if text, isErr := call(t, srv.handleListVersions, map[string]any{"line": "nightly"}); !isErr || !strings.Contains(text, "nightly") {
		t.Errorf("unknown line: %v %s", isErr, text)
	}
	if src.loads != 0 {
		t.Error("an unknown line should not trigger a load")
	}

	src.loadErr = errors.New("disk full")
	if text, isErr := call(t, srv.handleListVersions, map[string]any{"line": "stable"}); !isErr || !strings.Contains(text, "disk full") {
		t.Errorf("load failure: %v %s", isErr, text)
	}
}

func TestGetVersion(t *testing.T) {
	srv := NewServer(newSource(), "/launcher", "/games", logger.NewSilentLogger(), "test")

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
		latest  bool
	}{
		{"by build number", map[string]any{"line": "unstable", "build": 2145}, false, false},
		{"latest", map[string]any{"line": "unstable", "build": -1}, false, true},
		{"missing build", map[string]any{"line": "unstable", "build": 7}, true, false},
		{"other line", map[string]any{"line": "stable", "build": 2145}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, srv.handleGetVersion, tt.args)
			if isErr != tt.wantErr {
				t.Fatalf("isErr = %v, want %v: %s", isErr, tt.wantErr, text)
			}
			if tt.wantErr {
				return
			}
			var view VersionView
			if err := json.Unmarshal([]byte(text), &view); err != nil {
				t.Fatal(err)
			}
			if view.Latest != tt.latest || view.EngineVersion != "5.3.0" {
				t.Errorf("view = %+v", view)
			}
		})
	}
}
