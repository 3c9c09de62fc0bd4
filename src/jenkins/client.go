// Package jenkins provides a client for the Jenkins server that builds the game.
package jenkins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"terasology-launcher/src/logger"
	"terasology-launcher/src/repository"
	"terasology-launcher/src/versioninfo"
)

const (
	// DefaultBaseURL is the public Terasology Jenkins.
	DefaultBaseURL = "http://jenkins.terasology.org"

	// memoSize bounds the number of finished builds remembered per fact.
	memoSize = 512

	maxResponseBytes = 1 << 20
)

// Client talks to the Jenkins JSON and plain-text APIs.
// It implements repository.BuildRepository.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger

	// Results and change logs of finished builds never change, so they are
	// kept across load cycles.
	results    *lru.Cache[buildKey, repository.JobResult]
	changeLogs *lru.Cache[buildKey, []string]
}

var _ repository.BuildRepository = (*Client)(nil)

type buildKey struct {
	job   string
	build int
}

// jobResultResponse is the payload of /job/<job>/<n>/api/json?tree=result.
type jobResultResponse struct {
	Result *string `json:"result"`
}

// changeLogResponse covers freestyle (changeSet) and pipeline (changeSets) jobs.
type changeLogResponse struct {
	ChangeSet  changeSet   `json:"changeSet"`
	ChangeSets []changeSet `json:"changeSets"`
}

type changeSet struct {
	Items []struct {
		Msg string `json:"msg"`
	} `json:"items"`
}

// causesResponse is the payload of the actions/causes tree of a build.
type causesResponse struct {
	Actions []struct {
		Causes []struct {
			UpstreamProject string `json:"upstreamProject"`
			UpstreamBuild   int    `json:"upstreamBuild"`
		} `json:"causes"`
	} `json:"actions"`
}

// NewClient creates a Jenkins client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	results, _ := lru.New[buildKey, repository.JobResult](memoSize)
	changeLogs, _ := lru.New[buildKey, []string](memoSize)
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:        log,
		results:    results,
		changeLogs: changeLogs,
	}
}

// LastSuccessfulBuildNumber returns the newest build whose result is SUCCESS or UNSTABLE.
func (c *Client) LastSuccessfulBuildNumber(ctx context.Context, jobName string) (int, error) {
	return c.buildNumber(ctx, jobName, "lastSuccessfulBuild", "last successful build")
}

// LastStableBuildNumber returns the newest build whose result is SUCCESS.
func (c *Client) LastStableBuildNumber(ctx context.Context, jobName string) (int, error) {
	return c.buildNumber(ctx, jobName, "lastStableBuild", "last stable build")
}

func (c *Client) buildNumber(ctx context.Context, jobName, permalink, op string) (int, error) {
	body, err := c.get(ctx, c.jobURL(jobName)+"/"+permalink+"/buildNumber", "text/plain")
	if err != nil {
		return 0, &repository.DownloadError{Op: op, Job: jobName, Err: err}
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return 0, &repository.DownloadError{Op: op, Job: jobName, Err: fmt.Errorf("invalid build number: %w", err)}
	}
	return n, nil
}

// JobResult returns the result of a single build.
func (c *Client) JobResult(ctx context.Context, jobName string, buildNumber int) (repository.JobResult, error) {
	key := buildKey{jobName, buildNumber}
	if r, ok := c.results.Get(key); ok {
		return r, nil
	}

	var resp jobResultResponse
	if err := c.getJSON(ctx, c.apiURL(jobName, buildNumber, "result"), &resp); err != nil {
		return "", &repository.DownloadError{Op: "job result", Job: jobName, Build: buildNumber, Err: err}
	}

	raw := ""
	if resp.Result != nil {
		raw = *resp.Result
	}
	result, err := repository.ParseJobResult(raw)
	if err != nil {
		return "", &repository.DownloadError{Op: "job result", Job: jobName, Build: buildNumber, Err: err}
	}

	// A null result means the build is still running.
	if resp.Result != nil {
		c.results.Add(key, result)
	}
	return result, nil
}

// ChangeLog returns the commit messages of a build in the order Jenkins lists them.
func (c *Client) ChangeLog(ctx context.Context, jobName string, buildNumber int) ([]string, error) {
	key := buildKey{jobName, buildNumber}
	if msgs, ok := c.changeLogs.Get(key); ok {
		return append([]string(nil), msgs...), nil
	}

	var resp changeLogResponse
	tree := "changeSet[items[msg]],changeSets[items[msg]]"
	if err := c.getJSON(ctx, c.apiURL(jobName, buildNumber, tree), &resp); err != nil {
		return nil, &repository.DownloadError{Op: "change log", Job: jobName, Build: buildNumber, Err: err}
	}

	var msgs []string
	for _, cs := range append([]changeSet{resp.ChangeSet}, resp.ChangeSets...) {
		for _, item := range cs.Items {
			if msg := strings.TrimSpace(item.Msg); msg != "" {
				msgs = append(msgs, msg)
			}
		}
	}

	c.changeLogs.Add(key, msgs)
	return append([]string(nil), msgs...), nil
}

// EngineTriggerBuildNumber returns the engine build that triggered a companion
// build, or repository.NoTrigger when it was started some other way.
func (c *Client) EngineTriggerBuildNumber(ctx context.Context, line repository.JobLine, companionBuildNumber int) (int, error) {
	var resp causesResponse
	tree := "actions[causes[upstreamProject,upstreamBuild]]"
	if err := c.getJSON(ctx, c.apiURL(line.CompanionJob, companionBuildNumber, tree), &resp); err != nil {
		return 0, &repository.DownloadError{Op: "upstream trigger", Job: line.CompanionJob, Build: companionBuildNumber, Err: err}
	}

	for _, action := range resp.Actions {
		for _, cause := range action.Causes {
			if cause.UpstreamBuild <= 0 {
				continue
			}
			if cause.UpstreamProject == line.Name || strings.HasSuffix(cause.UpstreamProject, "/"+line.Name) {
				return cause.UpstreamBuild, nil
			}
		}
	}
	return repository.NoTrigger, nil
}

// VersionInfo downloads and parses the build's versionInfo.properties.
func (c *Client) VersionInfo(ctx context.Context, jobName string, buildNumber int) (versioninfo.Info, error) {
	u, err := c.FileDownloadURL(jobName, buildNumber, repository.ArtifactVersionInfo)
	if err != nil {
		return versioninfo.Info{}, &repository.DownloadError{Op: "version info", Job: jobName, Build: buildNumber, Err: err}
	}
	body, err := c.get(ctx, u, "text/plain")
	if err != nil {
		return versioninfo.Info{}, &repository.DownloadError{Op: "version info", Job: jobName, Build: buildNumber, Err: err}
	}
	info, err := versioninfo.Parse(body)
	if err != nil {
		return info, &repository.DownloadError{Op: "version info", Job: jobName, Build: buildNumber, Err: err}
	}
	return info, nil
}

// FileDownloadURL returns the artifact URL of a build.
func (c *Client) FileDownloadURL(jobName string, buildNumber int, kind repository.ArtifactKind) (string, error) {
	p, err := kind.Path()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%d/artifact/%s", c.jobURL(jobName), buildNumber, p), nil
}

func (c *Client) jobURL(jobName string) string {
	return c.baseURL + "/job/" + url.PathEscape(jobName)
}

func (c *Client) apiURL(jobName string, buildNumber int, tree string) string {
	return fmt.Sprintf("%s/%d/api/json?tree=%s", c.jobURL(jobName), buildNumber, url.QueryEscape(tree))
}

func (c *Client) getJSON(ctx context.Context, u string, v interface{}) error {
	body, err := c.get(ctx, u, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// get performs a GET and maps HTTP failures onto the repository sentinels.
func (c *Client) get(ctx context.Context, u, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)

	c.log.Trace("GET %s", u)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("%w: %v", repository.ErrNetworkTimeout, err)
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, repository.ErrBuildNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, repository.ErrAuthFailed
	case http.StatusTooManyRequests:
		return nil, repository.ErrRateLimited
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
