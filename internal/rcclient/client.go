package rcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"rcsup/internal/faults"
)

// HTTPDoer describes the HTTP client used by the RC client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPError reports a non-success RC response status.
type HTTPError struct {
	Code int
	Body string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("rc returned status %d", e.Code)
	}
	return fmt.Sprintf("rc returned status %d: %s", e.Code, e.Body)
}

// ActiveMount is one entry of the daemon's live mount listing.
type ActiveMount struct {
	Fs         string `json:"Fs"`
	MountPoint string `json:"MountPoint"`
}

// JobGroup carries the source and destination of a submitted job.
type JobGroup struct {
	SrcFs string `json:"srcFs"`
	DstFs string `json:"dstFs"`
}

// JobStatus is the daemon's view of an asynchronous job.
type JobStatus struct {
	Finished bool     `json:"finished"`
	Command  string   `json:"command"`
	Group    JobGroup `json:"group"`
}

// MountRequest is the payload for mount creation.
type MountRequest struct {
	Fs         string         `json:"fs"`
	MountPoint string         `json:"mountPoint"`
	MountOpt   map[string]any `json:"mountOpt,omitempty"`
	VfsOpt     map[string]any `json:"vfsOpt,omitempty"`
}

// Client provides typed access to the daemon RC API.
type Client struct {
	baseURL string
	user    string
	pass    string
	http    HTTPDoer
}

// New constructs an RC client for the given base URL and credentials. A nil
// doer falls back to http.DefaultClient (which carries no timeout).
func New(baseURL, user, pass string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		user:    user,
		pass:    pass,
		http:    doer,
	}
}

// ProbeReady reports whether the daemon answers its readiness probe.
func (c *Client) ProbeReady(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, c.baseURL+"/", nil)
	if err != nil {
		return false
	}
	req.SetBasicAuth(c.user, c.pass)
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}

// SubmitJob starts an asynchronous job for the given command and returns the
// daemon-assigned job identifier. The async execution flag is added to the
// submitted options unconditionally.
func (c *Client) SubmitJob(ctx context.Context, command string, opts map[string]any) (string, error) {
	payload := make(map[string]any, len(opts)+1)
	for key, value := range opts {
		payload[key] = value
	}
	payload["_async"] = true

	var result struct {
		JobID json.Number `json:"jobid"`
	}
	if err := c.post(ctx, commandPath(command), nil, payload, &result); err != nil {
		return "", faults.Wrap(faults.ErrSubmission, "rc", command, "", err)
	}
	jobID := result.JobID.String()
	if jobID == "" {
		return "", faults.Wrap(faults.ErrSubmission, "rc", command, "daemon returned no job id", nil)
	}
	return jobID, nil
}

// JobStatus fetches the state of a previously submitted job. A job the daemon
// no longer knows about yields faults.ErrNotFound.
func (c *Client) JobStatus(ctx context.Context, jobID string) (JobStatus, error) {
	var status JobStatus
	query := url.Values{"jobid": []string{jobID}}
	err := c.post(ctx, "job/status", query, map[string]any{}, &status)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && isJobNotFound(httpErr) {
			return JobStatus{}, faults.Wrap(faults.ErrNotFound, "rc", "job/status", "job "+jobID, nil)
		}
		return JobStatus{}, fmt.Errorf("job status %s: %w", jobID, err)
	}
	return status, nil
}

// ListActiveMounts returns the daemon's current mount list.
func (c *Client) ListActiveMounts(ctx context.Context) ([]ActiveMount, error) {
	var result struct {
		MountPoints []ActiveMount `json:"mountPoints"`
	}
	if err := c.post(ctx, "mount/listmounts", nil, map[string]any{}, &result); err != nil {
		return nil, fmt.Errorf("list active mounts: %w", err)
	}
	return result.MountPoints, nil
}

// CreateMount asks the daemon to mount the given remote.
func (c *Client) CreateMount(ctx context.Context, req MountRequest) error {
	if err := c.post(ctx, "mount/mount", nil, req, nil); err != nil {
		return fmt.Errorf("create mount %s at %s: %w", req.Fs, req.MountPoint, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode rc request: %w", err)
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build rc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.pass)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read rc response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &HTTPError{Code: resp.StatusCode, Body: errorDetail(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode rc response: %w", err)
	}
	return nil
}

// commandPath maps a task command to its RC endpoint. Bare command names are
// operations of the sync group; anything containing a slash is already a full
// RC path.
func commandPath(command string) string {
	command = strings.TrimSpace(command)
	if strings.Contains(command, "/") {
		return command
	}
	return "sync/" + command
}

func errorDetail(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}

func isJobNotFound(err *HTTPError) bool {
	if err == nil {
		return false
	}
	if err.Code == http.StatusNotFound {
		return true
	}
	return strings.Contains(strings.ToLower(err.Body), "job not found")
}
