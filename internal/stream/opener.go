package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Opener opens the raw event stream for a job.
type Opener interface {
	Open(ctx context.Context, jobID string) (io.ReadCloser, error)
}

// HTTPOpener opens GET {BaseURL}/research/{jobID}/stream.
type HTTPOpener struct {
	BaseURL string
	// Client must not set a Timeout; the stream lives as long as the job.
	Client *http.Client
}

// Open issues the stream request and returns the response body.
func (o HTTPOpener) Open(ctx context.Context, jobID string) (io.ReadCloser, error) {
	if jobID == "" {
		return nil, ErrNoJobID
	}
	endpoint := strings.TrimRight(o.BaseURL, "/") + "/research/" + url.PathEscape(jobID) + "/stream"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("open stream: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}
