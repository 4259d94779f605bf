// Package ghactions is a thin client for the GitHub-Actions-compatible REST
// surface the spoke factory depends on: workflow dispatch, run listing, and
// artifact retrieval. The dispatch endpoint returns no correlation id, so run
// resolution is a snapshot-diff protocol (see resolve.go).
package ghactions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/seichimap/spoke-cli/internal/resilience"
)

const defaultBaseURL = "https://api.github.com"

// Client defines the remote-CI operations used by the orchestration layer.
type Client interface {
	Dispatch(ctx context.Context, workflowFile, ref string, inputs map[string]string) error
	ListRuns(ctx context.Context, workflowFile string, perPage int) ([]WorkflowRun, error)
	GetRun(ctx context.Context, runID int64) (*WorkflowRun, error)
	ListArtifacts(ctx context.Context, runID int64) ([]Artifact, error)
	DownloadArtifactZip(ctx context.Context, artifactID int64) ([]byte, error)
}

// WorkflowRun is a single workflow run as reported by the provider.
type WorkflowRun struct {
	ID           int64            `json:"id"`
	HTMLURL      string           `json:"html_url"`
	Status       string           `json:"status"`
	Conclusion   string           `json:"conclusion"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DisplayTitle string           `json:"display_title"`
	Name         string           `json:"name"`
	HeadBranch   string           `json:"head_branch"`
	PullRequests []PullRequestRef `json:"pull_requests"`
}

// PullRequestRef is a pull request associated with a run.
type PullRequestRef struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// Artifact is a file produced by a completed run.
type Artifact struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	SizeInBytes        int64  `json:"size_in_bytes"`
	Expired            bool   `json:"expired"`
	ArchiveDownloadURL string `json:"archive_download_url"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	owner   string
	repo    string
	baseURL string
	http    *http.Client
}

// NewClient creates a remote-CI client for one repository.
func NewClient(token, owner, repo string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		owner:   owner,
		repo:    repo,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) actionsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/actions%s", c.baseURL, c.owner, c.repo, path)
}

// do performs one request and returns the response body. Non-2xx responses
// become errors carrying the HTTP status and body text; transient statuses
// are wrapped for the retry layer.
func (c *httpClient) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, eris.Wrap(err, "ghactions: create request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ghactions: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ghactions: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := eris.Errorf("ghactions: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	return respBody, nil
}

// getWithRetry performs a GET with the default retry policy. Only read
// accessors retry; Dispatch is not idempotent and never does.
func (c *httpClient) getWithRetry(ctx context.Context, url, operation string) ([]byte, error) {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("ghactions", operation)
	return resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, http.MethodGet, url, nil)
	})
}

func (c *httpClient) Dispatch(ctx context.Context, workflowFile, ref string, inputs map[string]string) error {
	payload, err := json.Marshal(map[string]any{
		"ref":    ref,
		"inputs": inputs,
	})
	if err != nil {
		return eris.Wrap(err, "ghactions: marshal dispatch payload")
	}

	url := c.actionsURL(fmt.Sprintf("/workflows/%s/dispatches", workflowFile))
	if _, err := c.do(ctx, http.MethodPost, url, payload); err != nil {
		return eris.Wrap(err, "ghactions: dispatch workflow")
	}
	return nil
}

func (c *httpClient) ListRuns(ctx context.Context, workflowFile string, perPage int) ([]WorkflowRun, error) {
	if perPage <= 0 {
		perPage = 20
	}
	url := c.actionsURL(fmt.Sprintf("/workflows/%s/runs?per_page=%d", workflowFile, perPage))
	body, err := c.getWithRetry(ctx, url, "list runs")
	if err != nil {
		return nil, eris.Wrap(err, "ghactions: list runs")
	}

	var result struct {
		WorkflowRuns []WorkflowRun `json:"workflow_runs"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "ghactions: unmarshal runs")
	}
	return result.WorkflowRuns, nil
}

func (c *httpClient) GetRun(ctx context.Context, runID int64) (*WorkflowRun, error) {
	url := c.actionsURL(fmt.Sprintf("/runs/%d", runID))
	body, err := c.getWithRetry(ctx, url, "get run")
	if err != nil {
		return nil, eris.Wrapf(err, "ghactions: get run %d", runID)
	}

	var run WorkflowRun
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, eris.Wrap(err, "ghactions: unmarshal run")
	}
	return &run, nil
}

func (c *httpClient) ListArtifacts(ctx context.Context, runID int64) ([]Artifact, error) {
	url := c.actionsURL(fmt.Sprintf("/runs/%d/artifacts", runID))
	body, err := c.getWithRetry(ctx, url, "list artifacts")
	if err != nil {
		return nil, eris.Wrapf(err, "ghactions: list artifacts for run %d", runID)
	}

	var result struct {
		Artifacts []Artifact `json:"artifacts"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "ghactions: unmarshal artifacts")
	}
	return result.Artifacts, nil
}

func (c *httpClient) DownloadArtifactZip(ctx context.Context, artifactID int64) ([]byte, error) {
	url := c.actionsURL(fmt.Sprintf("/artifacts/%d/zip", artifactID))
	body, err := c.getWithRetry(ctx, url, "download artifact")
	if err != nil {
		return nil, eris.Wrapf(err, "ghactions: download artifact %d", artifactID)
	}
	return body, nil
}
