// Package mcp exposes the resolved version lists as MCP tools.
package mcp

import "terasology-launcher/src/version"

// VersionView is the JSON shape of a version record returned by the tools.
type VersionView struct {
	Line             string   `json:"line"`
	Build            *int     `json:"build,omitempty"`
	Latest           bool     `json:"latest,omitempty"`
	OmegaBuild       *int     `json:"omega_build,omitempty"`
	Successful       *bool    `json:"successful,omitempty"`
	Installed        bool     `json:"installed"`
	InstallationPath string   `json:"installation_path,omitempty"`
	DisplayVersion   string   `json:"display_version,omitempty"`
	EngineVersion    string   `json:"engine_version,omitempty"`
	ChangeLog        []string `json:"change_log,omitempty"`
}

// VersionList is the response of list_versions.
type VersionList struct {
	Line     string        `json:"line"`
	LoadedAt string        `json:"loaded_at"`
	Versions []VersionView `json:"versions"`
}

func toView(rec version.Record) VersionView {
	v := VersionView{
		Line:             rec.Line,
		Build:            rec.BuildNumber,
		Latest:           rec.Latest,
		OmegaBuild:       rec.CompanionBuildNumber,
		Successful:       rec.Successful,
		Installed:        rec.IsInstalled(),
		InstallationPath: rec.InstallationPath,
		ChangeLog:        rec.ChangeLog,
	}
	if rec.Info != nil {
		v.DisplayVersion = rec.Info.DisplayVersion
		v.EngineVersion = rec.Info.EngineVersion
	}
	return v
}
