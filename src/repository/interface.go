// Package repository defines the contract between the version resolver and
// the CI server that publishes game builds.
package repository

import (
	"context"

	"terasology-launcher/src/versioninfo"
)

// NoTrigger is returned by EngineTriggerBuildNumber when a companion build
// was not started by an engine build.
const NoTrigger = 0

// BuildRepository queries a CI server for build metadata.
// Every method fails with a *DownloadError.
type BuildRepository interface {
	LastSuccessfulBuildNumber(ctx context.Context, jobName string) (int, error)

	// LastStableBuildNumber is part of the contract for callers that want
	// stricter builds; the resolver prefers LastSuccessfulBuildNumber.
	LastStableBuildNumber(ctx context.Context, jobName string) (int, error)

	JobResult(ctx context.Context, jobName string, buildNumber int) (JobResult, error)

	ChangeLog(ctx context.Context, jobName string, buildNumber int) ([]string, error)

	// EngineTriggerBuildNumber returns the engine build of line that started
	// the companion build, or NoTrigger.
	EngineTriggerBuildNumber(ctx context.Context, line JobLine, companionBuildNumber int) (int, error)

	// VersionInfo fetches the build's versionInfo.properties artifact.
	// A build without the artifact fails with ErrBuildNotFound.
	VersionInfo(ctx context.Context, jobName string, buildNumber int) (versioninfo.Info, error)

	FileDownloadURL(jobName string, buildNumber int, kind ArtifactKind) (string, error)
}
