// Package game turns an installed build into a running game process and
// reports whether it came up.
package game

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// Feature is an engine capability that changes how the game is started.
type Feature int

const (
	// FeatureLWJGL3 needs extra JVM flags on macOS.
	FeatureLWJGL3 Feature = iota
	// FeaturePicocli switched the game to POSIX style long options.
	FeaturePicocli
	// FeatureJRE17 requires a Java 17 runtime.
	FeatureJRE17
)

var features = []struct {
	feature Feature
	name    string
	since   *goversion.Version
}{
	{FeatureLWJGL3, "LWJGL3", goversion.Must(goversion.NewVersion("4.1.0"))},
	{FeaturePicocli, "picocli", goversion.Must(goversion.NewVersion("5.1.0"))},
	{FeatureJRE17, "JRE17", goversion.Must(goversion.NewVersion("6.0.0"))},
}

func (f Feature) String() string {
	for _, e := range features {
		if e.feature == f {
			return e.name
		}
	}
	return fmt.Sprintf("Feature(%d)", int(f))
}

// Since returns the first engine version providing f.
func (f Feature) Since() *goversion.Version {
	for _, e := range features {
		if e.feature == f {
			return e.since
		}
	}
	return nil
}

// Provides reports whether engine has feature f. Pre-release and metadata
// are ignored, so 5.1.0-SNAPSHOT provides everything 5.1.0 does.
func Provides(f Feature, engine *goversion.Version) bool {
	since := f.Since()
	if since == nil || engine == nil {
		return false
	}
	return core(engine).GreaterThanOrEqual(since)
}

func core(v *goversion.Version) *goversion.Version {
	s := v.Segments()
	for len(s) < 3 {
		s = append(s, 0)
	}
	return goversion.Must(goversion.NewVersion(fmt.Sprintf("%d.%d.%d", s[0], s[1], s[2])))
}
