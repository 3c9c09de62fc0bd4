// Package version resolves which game builds exist, which are installed, and
// which Omega bundle belongs to each engine build.
package version

import (
	"fmt"

	"terasology-launcher/src/versioninfo"
)

const (
	// BuildLatest selects the synthetic "latest" entry of a job line.
	BuildLatest = -1

	// NoChangesEntry stands in for an empty or unavailable change log.
	NoChangesEntry = "No changes"
)

// Record is everything known about one build of a job line. Records are
// values: the resolver builds new ones every cycle and hands out copies.
type Record struct {
	Line                 string            `json:"line"`
	BuildNumber          *int              `json:"buildNumber,omitempty"`
	CompanionBuildNumber *int              `json:"companionBuildNumber,omitempty"`
	Successful           *bool             `json:"successful,omitempty"`
	ChangeLog            []string          `json:"changeLog,omitempty"`
	Info                 *versioninfo.Info `json:"info,omitempty"`

	// Installation state is rediscovered from disk every cycle and never cached.
	InstallationPath string `json:"-"`
	GameJar          string `json:"-"`
	Latest           bool   `json:"-"`
}

// IsInstalled reports whether both the installation directory and the game
// jar are known.
func (r Record) IsInstalled() bool {
	return r.InstallationPath != "" && r.GameJar != ""
}

// Number returns the build number, or false for a latest entry with nothing
// behind it.
func (r Record) Number() (int, bool) {
	if r.BuildNumber == nil {
		return 0, false
	}
	return *r.BuildNumber, true
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	c := r
	c.BuildNumber = cloneInt(r.BuildNumber)
	c.CompanionBuildNumber = cloneInt(r.CompanionBuildNumber)
	if r.Successful != nil {
		ok := *r.Successful
		c.Successful = &ok
	}
	if r.ChangeLog != nil {
		c.ChangeLog = append([]string(nil), r.ChangeLog...)
	}
	if r.Info != nil {
		info := *r.Info
		c.Info = &info
	}
	return c
}

// AsLatest returns a copy flagged as the synthetic latest entry.
func (r Record) AsLatest() Record {
	c := r.Clone()
	c.Latest = true
	return c
}

func (r Record) String() string {
	n := "latest"
	if b, ok := r.Number(); ok {
		n = fmt.Sprintf("#%d", b)
	}
	if r.Latest {
		n = "latest " + n
	}
	return r.Line + " " + n
}

func intPtr(n int) *int {
	return &n
}

func boolPtr(b bool) *bool {
	return &b
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return intPtr(*p)
}
