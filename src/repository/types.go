package repository

import "fmt"

// JobLine describes one CI build series and its Omega companion job.
type JobLine struct {
	Name             string // Jenkins job building the engine
	CompanionJob     string // Jenkins job bundling the engine with Omega modules
	GitBranch        string
	MinBuildNumber   int // older builds use a different artifact layout
	PrevBuildNumbers int // builds fetched below the last successful one
	Stable           bool
	OnlyInstalled    bool // skip remote discovery, show local installs only
}

func (l JobLine) String() string {
	return l.Name
}

var (
	Stable = JobLine{
		Name:             "TerasologyStable",
		CompanionJob:     "DistroOmegaRelease",
		GitBranch:        "master",
		MinBuildNumber:   15,
		PrevBuildNumbers: 4,
		Stable:           true,
	}
	Unstable = JobLine{
		Name:             "Terasology",
		CompanionJob:     "DistroOmega",
		GitBranch:        "develop",
		MinBuildNumber:   245,
		PrevBuildNumbers: 4,
	}
)

// Lines returns the job lines in processing order.
func Lines() []JobLine {
	return []JobLine{Stable, Unstable}
}

// LineByName resolves the short names used on the command line
// ("stable", "unstable") as well as the job names.
func LineByName(name string) (JobLine, error) {
	switch name {
	case "stable":
		return Stable, nil
	case "unstable", "develop":
		return Unstable, nil
	}
	if l, ok := LineByJobName(name); ok {
		return l, nil
	}
	return JobLine{}, fmt.Errorf("%w %q", ErrUnknownLine, name)
}

// LineByJobName finds the line that owns an engine or companion job.
func LineByJobName(job string) (JobLine, bool) {
	for _, l := range Lines() {
		if l.Name == job || l.CompanionJob == job {
			return l, true
		}
	}
	return JobLine{}, false
}

// JobResult is the Jenkins result of a single build.
type JobResult string

const (
	ResultAborted  JobResult = "ABORTED"
	ResultFailure  JobResult = "FAILURE"
	ResultNotBuilt JobResult = "NOT_BUILT"
	ResultSuccess  JobResult = "SUCCESS"
	ResultUnstable JobResult = "UNSTABLE"
)

// ParseJobResult maps the Jenkins result string. An empty result means the
// build is still running and is reported as NOT_BUILT.
func ParseJobResult(s string) (JobResult, error) {
	switch r := JobResult(s); r {
	case ResultAborted, ResultFailure, ResultNotBuilt, ResultSuccess, ResultUnstable:
		return r, nil
	case "":
		return ResultNotBuilt, nil
	}
	return "", fmt.Errorf("unknown job result %q", s)
}

// Successful reports whether the build produced usable artifacts.
// Unstable builds (failing tests) still count.
func (r JobResult) Successful() bool {
	return r == ResultSuccess || r == ResultUnstable
}

// ArtifactKind selects one of the files published by a build.
type ArtifactKind int

const (
	ArtifactGameZip ArtifactKind = iota
	ArtifactOmegaZip
	ArtifactVersionInfo
)

func (k ArtifactKind) String() string {
	switch k {
	case ArtifactGameZip:
		return "game-zip"
	case ArtifactOmegaZip:
		return "omega-zip"
	case ArtifactVersionInfo:
		return "version-info"
	}
	return fmt.Sprintf("ArtifactKind(%d)", int(k))
}

// Path returns the artifact location relative to the build's artifact root.
func (k ArtifactKind) Path() (string, error) {
	switch k {
	case ArtifactGameZip:
		return "build/distributions/Terasology.zip", nil
	case ArtifactOmegaZip:
		return "distros/omega/build/distributions/TerasologyOmega.zip", nil
	case ArtifactVersionInfo:
		return "build/resources/main/org/terasology/version/versionInfo.properties", nil
	}
	return "", fmt.Errorf("unknown artifact kind %d", int(k))
}
