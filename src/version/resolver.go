package version

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"

	"terasology-launcher/src/cache"
	"terasology-launcher/src/install"
	"terasology-launcher/src/logger"
	"terasology-launcher/src/repository"
	"terasology-launcher/src/versioninfo"
)

// InstallScanner finds installed builds below a directory.
type InstallScanner interface {
	Scan(ctx context.Context, root string) ([]install.Installation, error)
}

// Resolver builds the per-line version lists shown to the user.
//
// LoadGameVersions must not run concurrently with itself; callers serialize
// it. Readers may run at any time and see either the previous or the new lists.
type Resolver struct {
	repo    repository.BuildRepository
	scanner InstallScanner
	log     logger.Logger
	lines   []repository.JobLine
	store   cache.Store

	mu    sync.RWMutex
	lists map[string][]Record
}

type Option func(*Resolver)

// WithJobLines replaces the default job lines.
func WithJobLines(lines ...repository.JobLine) Option {
	return func(r *Resolver) {
		r.lines = lines
	}
}

// WithStore uses st instead of a file store below the launcher directory.
func WithStore(st cache.Store) Option {
	return func(r *Resolver) {
		r.store = st
	}
}

func NewResolver(repo repository.BuildRepository, scanner InstallScanner, log logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		repo:    repo,
		scanner: scanner,
		log:     log,
		lines:   repository.Lines(),
		lists:   make(map[string][]Record),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadGameVersions rebuilds every job line's version list. Remote and cache
// failures degrade to missing facts; only cancellation aborts the cycle.
func (r *Resolver) LoadGameVersions(ctx context.Context, launcherDir, gameDir string) error {
	st := r.store
	if st == nil {
		fs, err := cache.OpenFileStore(filepath.Join(launcherDir, "cache"), r.log)
		if err != nil {
			r.log.Error("The cache directory can not be used: %v", err)
		} else {
			st = fs
		}
	}

	installs, err := r.scanner.Scan(ctx, gameDir)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.log.Error("Installed games can not be loaded from %s: %v", gameDir, err)
		installs = nil
	}

	lists := make(map[string][]Record, len(r.lines))
	for _, line := range r.lines {
		list, err := r.loadLine(ctx, line, installs, st)
		if err != nil {
			return err
		}
		lists[line.Name] = list
	}

	r.mu.Lock()
	r.lists = lists
	r.mu.Unlock()

	if st != nil {
		removed, err := st.EvictOlderThan(cache.MaxAge)
		if err != nil {
			r.log.Warn("Cache eviction failed: %v", err)
		}
		r.log.Debug("Evicted %d outdated cache entries", removed)
	}
	return nil
}

// GameVersionList returns the newest-first list of line with the latest
// entry first. The slice is a copy.
func (r *Resolver) GameVersionList(line repository.JobLine) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.lists[line.Name]
	out := make([]Record, len(list))
	for i, rec := range list {
		out[i] = rec.Clone()
	}
	return out
}

// GameVersionForBuild finds a build in the current list. BuildLatest returns
// the synthetic latest entry.
func (r *Resolver) GameVersionForBuild(line repository.JobLine, buildNumber int) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.lists[line.Name] {
		if buildNumber == BuildLatest {
			if rec.Latest {
				return rec.Clone(), true
			}
			continue
		}
		if n, ok := rec.Number(); ok && !rec.Latest && n == buildNumber {
			return rec.Clone(), true
		}
	}
	r.log.Warn("GameVersion not found for '%s' '%d'", line, buildNumber)
	return Record{}, false
}

func (r *Resolver) loadLine(ctx context.Context, line repository.JobLine, installs []install.Installation, st cache.Store) ([]Record, error) {
	numbers := make(map[int]struct{})
	records := make(map[int]Record)
	results := make(map[int]repository.JobResult)

	last, haveLast, err := r.discover(ctx, line, numbers, results)
	if err != nil {
		return nil, err
	}

	for _, inst := range installs {
		if inst.Line.Name != line.Name {
			continue
		}
		numbers[inst.BuildNumber] = struct{}{}
		if _, ok := records[inst.BuildNumber]; ok {
			r.log.Info("Installed game already loaded. '%s'", inst.EngineJar)
			continue
		}
		info := inst.Info
		// An installed build ran, whatever the server knows about it.
		records[inst.BuildNumber] = Record{
			Line:             line.Name,
			BuildNumber:      intPtr(inst.BuildNumber),
			Successful:       boolPtr(true),
			InstallationPath: inst.Root,
			GameJar:          inst.GameJar,
			Info:             &info,
		}
	}

	if line.Stable && !line.OnlyInstalled {
		fillGaps(numbers, line.MinBuildNumber, last, haveLast)
	}

	builds := sortedNumbers(numbers)
	unknownChangeLogs := make(map[int]bool)
	for _, n := range builds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, changeLogKnown := r.hydrate(ctx, line, n, records, results, st)
		records[n] = rec
		if !changeLogKnown {
			unknownChangeLogs[n] = true
		}
	}

	if err := r.applyCompanions(ctx, line, builds, records); err != nil {
		return nil, err
	}

	if st != nil {
		entries := make([]cache.Entry, 0, len(records))
		for _, n := range builds {
			rec := records[n]
			if unknownChangeLogs[n] {
				// The placeholder is for display only; the next cycle retries.
				rec = rec.Clone()
				rec.ChangeLog = nil
			}
			entries = append(entries, cache.Entry{Job: line.Name, Build: n, Value: rec})
		}
		if err := st.SaveAll(entries); err != nil {
			r.log.Error("The cache data can not be written for %s: %v", line, err)
		}
	}

	return materialize(line, builds, records, last, haveLast), nil
}

// discover adds the last successful build and up to PrevBuildNumbers older
// builds that exist on the server.
func (r *Resolver) discover(ctx context.Context, line repository.JobLine, numbers map[int]struct{}, results map[int]repository.JobResult) (int, bool, error) {
	if line.OnlyInstalled {
		return 0, false, nil
	}

	// "Successful" rather than "stable": stable builds are flagged separately
	// and successful is always available.
	last, err := r.repo.LastSuccessfulBuildNumber(ctx, line.Name)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, false, ctxErr
		}
		r.log.Info("Retrieving last successful build number failed. '%s': %v", line, err)
		return 0, false, nil
	}
	if last < line.MinBuildNumber {
		return last, true, nil
	}
	numbers[last] = struct{}{}

	collected := 0
	for n := last - 1; collected < line.PrevBuildNumbers && n >= line.MinBuildNumber; n-- {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		result, err := r.repo.JobResult(ctx, line.Name, n)
		if errors.Is(err, repository.ErrBuildNotFound) {
			continue
		}
		if err != nil {
			r.log.Debug("Load job result failed. '%s' '%d': %v", line, n, err)
		} else {
			results[n] = result
		}
		numbers[n] = struct{}{}
		collected++
	}
	return last, true, nil
}

// fillGaps adds every build between the smallest known build (at least
// minBuild) and the largest (at most the last successful one).
func fillGaps(numbers map[int]struct{}, minBuild, last int, haveLast bool) {
	if len(numbers) == 0 {
		return
	}
	builds := sortedNumbers(numbers)
	first, end := builds[0], builds[len(builds)-1]
	if first < minBuild {
		first = minBuild
	}
	if haveLast && end > last {
		end = last
	}
	for n := first; n <= end; n++ {
		numbers[n] = struct{}{}
	}
}

// hydrate fills in the result, change log and version info of build n from
// the cache or the server. Lines of installed builds only never ask the
// server. changeLogKnown is false when the change log is a placeholder for a
// failed or skipped fetch.
func (r *Resolver) hydrate(ctx context.Context, line repository.JobLine, n int, records map[int]Record, results map[int]repository.JobResult, st cache.Store) (rec Record, changeLogKnown bool) {
	rec, ok := records[n]
	changeLogKnown = true
	if !ok {
		rec = Record{Line: line.Name, BuildNumber: intPtr(n)}
	}

	cached, haveCached := r.readCached(line, n, st)

	switch {
	case rec.Successful != nil:
	case haveCached && cached.Successful != nil:
		rec.Successful = boolPtr(*cached.Successful)
	case line.OnlyInstalled:
	default:
		result, known := results[n]
		if !known {
			var err error
			result, err = r.repo.JobResult(ctx, line.Name, n)
			if err != nil {
				r.log.Debug("Load job result failed. '%s' '%d': %v", line, n, err)
				break
			}
		}
		rec.Successful = boolPtr(result.Successful())
	}

	switch {
	case haveCached && cached.ChangeLog != nil:
		rec.ChangeLog = append([]string(nil), cached.ChangeLog...)
	case line.OnlyInstalled:
		rec.ChangeLog = []string{NoChangesEntry}
		changeLogKnown = false
	default:
		changeLog, err := r.repo.ChangeLog(ctx, line.Name, n)
		if err != nil {
			r.log.Debug("Load change log failed. '%s' '%d': %v", line, n, err)
			changeLogKnown = false
		}
		if len(changeLog) == 0 {
			changeLog = []string{NoChangesEntry}
		}
		rec.ChangeLog = changeLog
	}

	switch {
	case rec.Info != nil:
	case haveCached && cached.Info != nil:
		info := *cached.Info
		rec.Info = &info
	case rec.Successful != nil && !*rec.Successful:
		// Failed builds have no artifacts worth describing.
	case line.OnlyInstalled:
	default:
		info, err := r.repo.VersionInfo(ctx, line.Name, n)
		switch {
		case errors.Is(err, repository.ErrBuildNotFound):
			rec.Info = &versioninfo.Info{}
		case err != nil:
			r.log.Warn("Load game version info failed. '%s' '%d': %v", line, n, err)
		default:
			rec.Info = &info
		}
	}

	return rec, changeLogKnown
}

func (r *Resolver) readCached(line repository.JobLine, n int, st cache.Store) (Record, bool) {
	if st == nil {
		return Record{}, false
	}
	var cached Record
	if err := st.Load(line.Name, n, &cached); err != nil {
		var notFound cache.ErrNotFound
		if !errors.As(err, &notFound) {
			r.log.Warn("The cached data can not be loaded! %v", err)
		}
		return Record{}, false
	}
	if b, ok := cached.Number(); !ok || b != n || cached.Line != line.Name {
		r.log.Warn("The cached game version can not be used! '%s'", cached)
		return Record{}, false
	}
	return cached, true
}

func (r *Resolver) applyCompanions(ctx context.Context, line repository.JobLine, builds []int, records map[int]Record) error {
	if len(builds) == 0 || line.OnlyInstalled {
		return nil
	}
	mapping, err := Correlate(ctx, r.repo, line, builds, r.log)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.log.Warn("Omega builds of %s can not be matched: %v", line, err)
		return nil
	}

	for _, n := range builds {
		rec := records[n]
		companion, ok := mapping[n]
		if !ok {
			rec.CompanionBuildNumber = nil
			r.log.Warn("No %s build found for %s #%d", line.CompanionJob, line, n)
		} else {
			rec.CompanionBuildNumber = intPtr(companion)
		}
		records[n] = rec
	}
	return nil
}

// materialize returns the newest-first list of records with a known result,
// preceded by a copy of the last successful build (or the newest record).
func materialize(line repository.JobLine, builds []int, records map[int]Record, last int, haveLast bool) []Record {
	list := make([]Record, 0, len(builds)+1)

	var latest Record
	if rec, ok := records[last]; haveLast && ok {
		latest = rec.AsLatest()
	} else if len(builds) > 0 {
		latest = records[builds[len(builds)-1]].AsLatest()
	} else {
		latest = Record{Line: line.Name, Latest: true}
	}
	list = append(list, latest)

	for i := len(builds) - 1; i >= 0; i-- {
		rec := records[builds[i]]
		if rec.Successful == nil {
			continue
		}
		list = append(list, rec)
	}
	return list
}

func sortedNumbers(numbers map[int]struct{}) []int {
	out := make([]int, 0, len(numbers))
	for n := range numbers {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
