package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"terasology-launcher/src/logger"
	"terasology-launcher/src/repository"
	"terasology-launcher/src/version"
)

// ReloadAfter is how long a loaded version list is served before the next
// tool call triggers a new load cycle.
const ReloadAfter = 10 * time.Minute

// VersionSource is the part of version.Resolver the tools need.
type VersionSource interface {
	LoadGameVersions(ctx context.Context, launcherDir, gameDir string) error
	GameVersionList(line repository.JobLine) []version.Record
	GameVersionForBuild(line repository.JobLine, buildNumber int) (version.Record, bool)
}

// Server is the MCP server of the launcher.
type Server struct {
	mcpServer   *server.MCPServer
	versions    VersionSource
	launcherDir string
	gameDir     string
	log         logger.Logger
	now         func() time.Time

	// mu serializes load cycles.
	mu       sync.Mutex
	loadedAt time.Time
}

func NewServer(versions VersionSource, launcherDir, gameDir string, log logger.Logger, appVersion string) *Server {
	s := server.NewMCPServer(
		"terasology-launcher",
		appVersion,
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer:   s,
		versions:    versions,
		launcherDir: launcherDir,
		gameDir:     gameDir,
		log:         log,
		now:         time.Now,
	}
	srv.registerTools()
	return srv
}

func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_versions",
		mcp.WithDescription("List the known game versions of a job line, newest first. The first entry is the latest build. Each entry has its build result, matching Omega build, install state and change log."),
		mcp.WithString("line",
			mcp.Required(),
			mcp.Description("Job line: stable, unstable, or a Jenkins job name"),
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Reload from Jenkins and disk before answering (default: false)"),
		),
	)

	getTool := mcp.NewTool("get_version",
		mcp.WithDescription("Get one game version of a job line by build number. Use -1 for the latest build."),
		mcp.WithString("line",
			mcp.Required(),
			mcp.Description("Job line: stable, unstable, or a Jenkins job name"),
		),
		mcp.WithNumber("build",
			mcp.Required(),
			mcp.Description("Engine build number, -1 for latest"),
		),
	)

	s.mcpServer.AddTool(listTool, s.handleListVersions)
	s.mcpServer.AddTool(getTool, s.handleGetVersion)
}

// Run serves the tools on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handleListVersions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line, err := repository.LineByName(request.GetString("line", ""))
	if err != nil {
		return mcp.NewToolResultError(repository.WrapError(err).Error()), nil
	}

	loadedAt, err := s.ensureLoaded(ctx, request.GetBool("refresh", false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading versions failed: %v", err)), nil
	}

	records := s.versions.GameVersionList(line)
	list := VersionList{
		Line:     line.Name,
		LoadedAt: loadedAt.UTC().Format(time.RFC3339),
		Versions: make([]VersionView, 0, len(records)),
	}
	for _, rec := range records {
		list.Versions = append(list.Versions, toView(rec))
	}
	return jsonResult(list)
}

func (s *Server) handleGetVersion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line, err := repository.LineByName(request.GetString("line", ""))
	if err != nil {
		return mcp.NewToolResultError(repository.WrapError(err).Error()), nil
	}
	build := request.GetInt("build", version.BuildLatest)

	if _, err := s.ensureLoaded(ctx, false); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading versions failed: %v", err)), nil
	}

	rec, ok := s.versions.GameVersionForBuild(line, build)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no version %d in %s", build, line.Name)), nil
	}
	return jsonResult(toView(rec))
}

// ensureLoaded runs a load cycle when none ran yet, the last one is older
// than ReloadAfter, or force is set.
func (s *Server) ensureLoaded(ctx context.Context, force bool) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && !s.loadedAt.IsZero() && s.now().Sub(s.loadedAt) < ReloadAfter {
		return s.loadedAt, nil
	}
	s.log.Debug("Loading game versions for MCP request")
	if err := s.versions.LoadGameVersions(ctx, s.launcherDir, s.gameDir); err != nil {
		return s.loadedAt, err
	}
	s.loadedAt = s.now()
	return s.loadedAt, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
