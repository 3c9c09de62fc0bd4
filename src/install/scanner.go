// Package install finds game installations on disk.
package install

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"terasology-launcher/src/logger"
	"terasology-launcher/src/repository"
	"terasology-launcher/src/versioninfo"
)

const (
	// MaxDepth is how many directory levels below the root are searched.
	MaxDepth = 5

	GameJarName = "Terasology.jar"

	infoMemoSize = 128
)

var (
	ErrEngineJarNotFound  = errors.New("engine jar not found")
	ErrEngineJarAmbiguous = errors.New("more than one engine jar found")
	ErrInvalid            = errors.New("invalid installation")
	ErrOutsideGameDir     = errors.New("installation is not inside the game directory")
)

// Installation is a validated build found on disk.
type Installation struct {
	Root        string // directory the game is started from
	EngineJar   string
	GameJar     string // empty when Terasology.jar is missing
	Line        repository.JobLine
	BuildNumber int
	Info        versioninfo.Info
}

// Scanner walks directories for engine jars and validates their version info.
type Scanner struct {
	log        logger.Logger
	lineForJob func(job string) (repository.JobLine, bool)

	// Parsed version info keyed by file identity; repeated load cycles
	// don't reopen unchanged jars.
	infos *lru.Cache[fileKey, versioninfo.Info]
}

type fileKey struct {
	path    string
	size    int64
	modTime time.Time
}

func NewScanner(log logger.Logger) *Scanner {
	infos, _ := lru.New[fileKey, versioninfo.Info](infoMemoSize)
	return &Scanner{
		log:        log,
		lineForJob: repository.LineByJobName,
		infos:      infos,
	}
}

// IsEngineJar reports whether a file name looks like the engine library.
func IsEngineJar(name string) bool {
	return strings.HasPrefix(name, "engine") &&
		strings.HasSuffix(name, ".jar") &&
		!strings.Contains(name, "-tests")
}

// Scan returns every valid installation below root. Invalid candidates are
// logged and skipped; only an unreadable root is an error.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Installation, error) {
	jars, err := s.findEngineJars(ctx, root)
	if err != nil {
		return nil, err
	}

	var installs []Installation
	for _, jar := range jars {
		inst, err := s.inspect(jar)
		if err != nil {
			s.log.Debug("Skipping %s: %v", jar, err)
			continue
		}
		installs = append(installs, inst)
	}
	return installs, nil
}

// Locate expects exactly one installation below dir. It is used after an
// archive was extracted.
func (s *Scanner) Locate(ctx context.Context, dir string) (Installation, error) {
	jars, err := s.findEngineJars(ctx, dir)
	if err != nil {
		return Installation{}, err
	}

	switch len(jars) {
	case 0:
		return Installation{}, &repository.UserError{
			Message: fmt.Sprintf("No game found in %s", dir),
			Hint:    "The installation is incomplete. Delete it and install the build again.",
			Err:     ErrEngineJarNotFound,
		}
	case 1:
		return s.inspect(jars[0])
	default:
		return Installation{}, &repository.UserError{
			Message: fmt.Sprintf("Found %d engine jars in %s", len(jars), dir),
			Hint:    "Several builds were extracted into the same directory. Remove the extra files: " + strings.Join(jars, ", "),
			Err:     ErrEngineJarAmbiguous,
		}
	}
}

// Delete removes the single installation below dir. The installation root
// must lie strictly inside gameDir.
func (s *Scanner) Delete(ctx context.Context, gameDir, dir string) (Installation, error) {
	inst, err := s.Locate(ctx, dir)
	if err != nil {
		return Installation{}, err
	}

	base, err := filepath.Abs(gameDir)
	if err != nil {
		return Installation{}, err
	}
	root, err := filepath.Abs(inst.Root)
	if err != nil {
		return Installation{}, err
	}
	rel, err := filepath.Rel(base, root)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Installation{}, &repository.UserError{
			Message: fmt.Sprintf("Refusing to delete %s", root),
			Hint:    "Only builds installed below the game directory " + base + " can be deleted.",
			Err:     ErrOutsideGameDir,
		}
	}

	s.log.Info("Deleting installed game %s #%d in %s", inst.Line, inst.BuildNumber, root)
	if err := os.RemoveAll(root); err != nil {
		return inst, fmt.Errorf("delete %s: %w", root, err)
	}
	return inst, nil
}

func (s *Scanner) findEngineJars(ctx context.Context, root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	var jars []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			s.log.Warn("Can not read %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if rel != "." && depth(rel) > MaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsEngineJar(d.Name()) {
			jars = append(jars, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return jars, nil
}

func depth(rel string) int {
	return len(strings.Split(filepath.ToSlash(rel), "/"))
}

func (s *Scanner) inspect(engineJar string) (Installation, error) {
	info, err := s.versionInfo(engineJar)
	if err != nil {
		return Installation{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	build, err := info.Build()
	if err != nil {
		return Installation{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	line, ok := s.lineForJob(info.JobName)
	if !ok {
		return Installation{}, fmt.Errorf("%w: unknown job %q", ErrInvalid, info.JobName)
	}
	if !strings.HasSuffix(info.GitBranch, line.GitBranch) {
		return Installation{}, fmt.Errorf("%w: branch %q does not belong to %s", ErrInvalid, info.GitBranch, line)
	}
	if build < line.MinBuildNumber {
		return Installation{}, fmt.Errorf("%w: build %d is older than %d", ErrInvalid, build, line.MinBuildNumber)
	}

	inst := Installation{
		Root:        installRoot(engineJar),
		EngineJar:   engineJar,
		Line:        line,
		BuildNumber: build,
		Info:        info,
	}
	inst.GameJar = findGameJar(engineJar, inst.Root)
	if inst.GameJar == "" {
		s.log.Error("%s is missing next to %s", GameJarName, engineJar)
	}
	return inst, nil
}

func (s *Scanner) versionInfo(path string) (versioninfo.Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return versioninfo.Info{}, err
	}
	key := fileKey{path: path, size: st.Size(), modTime: st.ModTime()}
	if info, ok := s.infos.Get(key); ok {
		return info, nil
	}

	info, err := versioninfo.ReadFromJar(path)
	if err != nil {
		return versioninfo.Info{}, err
	}
	s.infos.Add(key, info)
	return info, nil
}

// installRoot maps <root>/lib(s)/engine.jar to <root>.
func installRoot(engineJar string) string {
	dir := filepath.Dir(engineJar)
	switch filepath.Base(dir) {
	case "lib", "libs":
		return filepath.Dir(dir)
	}
	return dir
}

func findGameJar(engineJar, root string) string {
	for _, dir := range []string{filepath.Dir(engineJar), root} {
		candidate := filepath.Join(dir, GameJarName)
		if st, err := os.Stat(candidate); err == nil && st.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}
