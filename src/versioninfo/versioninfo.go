// Package versioninfo reads the versionInfo.properties resource that every
// engine build carries.
package versioninfo

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"
	"github.com/magiconair/properties"
	"go.uber.org/multierr"
)

// ResourcePath is the location of the properties file inside the engine jar.
const ResourcePath = "org/terasology/version/versionInfo.properties"

// ErrNoVersionInfo is returned when the resource is missing or lacks the
// keys needed to identify a build.
var ErrNoVersionInfo = errors.New("no version info available")

// Info is the parsed content of versionInfo.properties.
type Info struct {
	BuildNumber    string `json:"buildNumber,omitempty"`
	BuildID        string `json:"buildId,omitempty"`
	BuildTag       string `json:"buildTag,omitempty"`
	BuildURL       string `json:"buildUrl,omitempty"`
	JobName        string `json:"jobName,omitempty"`
	GitBranch      string `json:"gitBranch,omitempty"`
	GitCommit      string `json:"gitCommit,omitempty"`
	DateTime       string `json:"dateTime,omitempty"`
	DisplayVersion string `json:"displayVersion,omitempty"`
	EngineVersion  string `json:"engineVersion,omitempty"`
}

// Empty reports whether no field is set. The resolver stores an empty Info
// for builds whose remote metadata does not exist.
func (i Info) Empty() bool {
	return i == Info{}
}

// Build returns the numeric build number.
func (i Info) Build() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(i.BuildNumber))
	if err != nil {
		return 0, fmt.Errorf("build number %q: %w", i.BuildNumber, err)
	}
	return n, nil
}

// EngineSemver parses EngineVersion.
func (i Info) EngineSemver() (*goversion.Version, error) {
	if i.EngineVersion == "" {
		return nil, fmt.Errorf("%w: engineVersion is not set", ErrNoVersionInfo)
	}
	return goversion.NewVersion(i.EngineVersion)
}

// Parse reads properties content. Unknown keys are ignored.
func Parse(data []byte) (Info, error) {
	p, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return Info{}, fmt.Errorf("parse version info: %w", err)
	}

	info := Info{
		BuildNumber:    p.GetString("buildNumber", ""),
		BuildID:        p.GetString("buildId", ""),
		BuildTag:       p.GetString("buildTag", ""),
		BuildURL:       p.GetString("buildUrl", ""),
		JobName:        p.GetString("jobName", ""),
		GitBranch:      p.GetString("gitBranch", ""),
		GitCommit:      p.GetString("gitCommit", ""),
		DateTime:       p.GetString("dateTime", ""),
		DisplayVersion: p.GetString("displayVersion", ""),
		EngineVersion:  p.GetString("engineVersion", ""),
	}
	if info.JobName == "" || info.BuildNumber == "" {
		return info, ErrNoVersionInfo
	}
	return info, nil
}

// ReadFromJar extracts and parses the resource from a jar or zip file.
func ReadFromJar(path string) (info Info, err error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(zr))

	for _, f := range zr.File {
		if f.Name != ResourcePath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Info{}, fmt.Errorf("open %s in %s: %w", ResourcePath, path, err)
		}
		data, readErr := io.ReadAll(rc)
		closeErr := rc.Close()
		if readErr != nil {
			return Info{}, fmt.Errorf("read %s in %s: %w", ResourcePath, path, readErr)
		}
		if closeErr != nil {
			return Info{}, closeErr
		}
		return Parse(data)
	}
	return Info{}, ErrNoVersionInfo
}
