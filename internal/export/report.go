package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrReportPending is returned while the job is still running.
	ErrReportPending = errors.New("export: report not ready yet")
	// ErrJobNotFound is returned for job ids the service does not know.
	ErrJobNotFound = errors.New("export: job not found")
)

// ReportClient fetches finished reports by job id.
type ReportClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewReportClient builds a client with a request timeout.
func NewReportClient(baseURL string, timeout time.Duration) *ReportClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ReportClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Fetch returns the final report text of a job.
func (c *ReportClient) Fetch(ctx context.Context, jobID string) (string, error) {
	if strings.TrimSpace(jobID) == "" {
		return "", ErrJobNotFound
	}
	endpoint := c.BaseURL + "/research/" + url.PathEscape(jobID) + "/report"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build report request: %w", err)
	}
	resp, err := httpClient(c.HTTP).Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch report: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusAccepted:
		return "", ErrReportPending
	case http.StatusNotFound:
		return "", ErrJobNotFound
	default:
		return "", fmt.Errorf("fetch report: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	var payload struct {
		Report string `json:"report"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode report: %w", err)
	}
	if payload.Report == "" {
		return "", ErrReportPending
	}
	return payload.Report, nil
}
