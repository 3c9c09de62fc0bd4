package version

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"terasology-launcher/src/install"
	"terasology-launcher/src/repository"
	"terasology-launcher/src/versioninfo"
)

var errOffline = errors.New("connection refused")

// fakeRepo is a scripted BuildRepository. Jobs without an entry in last
// fail; builds without a result are reported as not found.
type fakeRepo struct {
	mu sync.Mutex

	last       map[string]int
	results    map[string]map[int]repository.JobResult
	changeLogs map[string]map[int][]string
	triggers   map[int]int // companion build -> engine build
	infos      map[string]map[int]versioninfo.Info

	failResults    bool
	failChangeLogs bool
	calls          map[string]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		last:       map[string]int{},
		results:    map[string]map[int]repository.JobResult{},
		changeLogs: map[string]map[int][]string{},
		triggers:   map[int]int{},
		infos:      map[string]map[int]versioninfo.Info{},
		calls:      map[string]int{},
	}
}

func (f *fakeRepo) setResult(job string, build int, r repository.JobResult) {
	if f.results[job] == nil {
		f.results[job] = map[int]repository.JobResult{}
	}
	f.results[job][build] = r
}

func (f *fakeRepo) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeRepo) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRepo) LastSuccessfulBuildNumber(ctx context.Context, jobName string) (int, error) {
	f.count("last")
	n, ok := f.last[jobName]
	if !ok {
		return 0, &repository.DownloadError{Op: "last successful build", Job: jobName, Err: errOffline}
	}
	return n, nil
}

func (f *fakeRepo) LastStableBuildNumber(ctx context.Context, jobName string) (int, error) {
	return f.LastSuccessfulBuildNumber(ctx, jobName)
}

func (f *fakeRepo) JobResult(ctx context.Context, jobName string, buildNumber int) (repository.JobResult, error) {
	f.count("result")
	if f.failResults {
		return "", &repository.DownloadError{Op: "job result", Job: jobName, Build: buildNumber, Err: errOffline}
	}
	r, ok := f.results[jobName][buildNumber]
	if !ok {
		return "", &repository.DownloadError{Op: "job result", Job: jobName, Build: buildNumber, Err: repository.ErrBuildNotFound}
	}
	return r, nil
}

func (f *fakeRepo) ChangeLog(ctx context.Context, jobName string, buildNumber int) ([]string, error) {
	f.count("changelog")
	if f.failChangeLogs {
		return nil, &repository.DownloadError{Op: "change log", Job: jobName, Build: buildNumber, Err: errOffline}
	}
	return f.changeLogs[jobName][buildNumber], nil
}

func (f *fakeRepo) EngineTriggerBuildNumber(ctx context.Context, line repository.JobLine, companionBuildNumber int) (int, error) {
	f.count("trigger")
	return f.triggers[companionBuildNumber], nil
}

func (f *fakeRepo) VersionInfo(ctx context.Context, jobName string, buildNumber int) (versioninfo.Info, error) {
	f.count("info")
	info, ok := f.infos[jobName][buildNumber]
	if !ok {
		return versioninfo.Info{}, &repository.DownloadError{Op: "version info", Job: jobName, Build: buildNumber, Err: repository.ErrBuildNotFound}
	}
	return info, nil
}

func (f *fakeRepo) FileDownloadURL(jobName string, buildNumber int, kind repository.ArtifactKind) (string, error) {
	return fmt.Sprintf("http://ci/job/%s/%d/%s", jobName, buildNumber, kind), nil
}

type fakeScanner struct {
	installs []install.Installation
	err      error
}

func (f *fakeScanner) Scan(ctx context.Context, root string) ([]install.Installation, error) {
	return f.installs, f.err
}
