package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/multierr"

	"terasology-launcher/src/logger"
)

var fileNamePattern = regexp.MustCompile(`^TerasologyGameVersion_.+_-?\d+\.json$`)

// FileStore keeps one JSON file per build in a directory.
// File modification times drive eviction.
type FileStore struct {
	dir string
	log logger.Logger
	now func() time.Time
}

// OpenFileStore creates dir if needed.
func OpenFileStore(dir string, log logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, log: log, now: time.Now}, nil
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Load(job string, build int, v interface{}) error {
	path := filepath.Join(s.dir, FileName(job, build))
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound{Job: job, Build: build}
	}
	if err != nil {
		return fmt.Errorf("read cache entry %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode cache entry %s: %w", path, err)
	}
	return nil
}

// Save writes through a temporary file so readers never see a partial entry.
func (s *FileStore) Save(job string, build int, v interface{}) (err error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry %s #%d: %w", job, build, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	_, err = tmp.Write(data)
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		return fmt.Errorf("write cache entry %s #%d: %w", job, build, err)
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, FileName(job, build)))
}

func (s *FileStore) SaveAll(entries []Entry) error {
	var err error
	for _, e := range entries {
		err = multierr.Append(err, s.Save(e.Job, e.Build, e.Value))
	}
	return err
}

func (s *FileStore) EvictOlderThan(maxAge time.Duration) (int, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read cache directory %s: %w", s.dir, err)
	}

	threshold := s.now().Add(-maxAge)
	removed := 0
	var errs error
	for _, de := range dirEntries {
		if de.IsDir() || !fileNamePattern.MatchString(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !info.ModTime().Before(threshold) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, de.Name())); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		s.log.Trace("Evicted cache entry %s", de.Name())
		removed++
	}
	return removed, errs
}
