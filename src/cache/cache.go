// Package cache persists per-build version records between launcher runs.
package cache

import (
	"fmt"
	"time"
)

// MaxAge is how long a cache entry is trusted after it was last written.
const MaxAge = 24 * time.Hour

// Store persists JSON documents keyed by job name and build number.
type Store interface {
	// Load decodes the entry into v. A missing entry returns ErrNotFound.
	Load(job string, build int, v interface{}) error

	Save(job string, build int, v interface{}) error

	// SaveAll writes every entry and returns the combined errors.
	SaveAll(entries []Entry) error

	// EvictOlderThan removes entries last written before now-maxAge and
	// returns how many were removed.
	EvictOlderThan(maxAge time.Duration) (int, error)
}

// Entry is one document handed to SaveAll.
type Entry struct {
	Job   string
	Build int
	Value interface{}
}

// ErrNotFound is returned when no entry exists for a build.
type ErrNotFound struct {
	Job   string
	Build int
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("no cache entry for %s #%d", e.Job, e.Build)
}

// FileName is the deterministic file name of a build's entry.
func FileName(job string, build int) string {
	return fmt.Sprintf("TerasologyGameVersion_%s_%d.json", job, build)
}
