package reportserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dossier/internal/event"
	"dossier/internal/journal"
	"dossier/internal/testutil"
)

type fakeJobs struct {
	jobs    []journal.JobSummary
	entries map[string][]journal.Entry
	reports map[string]string
	err     error
}

func (f *fakeJobs) Jobs(context.Context) ([]journal.JobSummary, error) {
	return f.jobs, f.err
}

func (f *fakeJobs) Events(_ context.Context, jobID string) ([]journal.Entry, error) {
	return f.entries[jobID], f.err
}

func (f *fakeJobs) Report(_ context.Context, jobID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	report, ok := f.reports[jobID]
	if !ok {
		return "", journal.ErrNoReport
	}
	return report, nil
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "http://example.com"+path, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

// TestNewHandlerRequiresJobs ensures a job source is mandatory.
func TestNewHandlerRequiresJobs(t *testing.T) {
	if _, err := NewHandler(Config{}); err == nil {
		t.Fatalf("expected error without job source")
	}
}

// TestNewHandlerServesIndex ensures the root path lists jobs with links.
func TestNewHandlerServesIndex(t *testing.T) {
	handler, err := NewHandler(Config{Jobs: &fakeJobs{jobs: []journal.JobSummary{
		{JobID: "job-1", Company: "Acme <Rockets>", Status: journal.StatusCompleted, StartedAt: time.Unix(0, 0), Events: 7},
	}}})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := get(t, handler, "/")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{`href="/jobs/job-1"`, "Acme &lt;Rockets&gt;", "completed", "<td>7</td>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in index:\n%s", want, body)
		}
	}
}

// TestNewHandlerServesReport ensures a report renders as HTML.
func TestNewHandlerServesReport(t *testing.T) {
	handler, err := NewHandler(Config{Jobs: &fakeJobs{
		jobs:    []journal.JobSummary{{JobID: "job-1", Company: "Acme"}},
		reports: map[string]string{"job-1": "# Acme\n\nRockets."},
	}})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := get(t, handler, "/jobs/job-1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); !strings.Contains(body, "<h1") || !strings.Contains(body, "Rockets.") {
		t.Fatalf("unexpected report page:\n%s", body)
	}

	if resp := get(t, handler, "/jobs/job-2"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for job without report, got %d", resp.Code)
	}
}

// TestNewHandlerServesEvents ensures payloads are returned as JSON.
func TestNewHandlerServesEvents(t *testing.T) {
	handler, err := NewHandler(Config{Jobs: &fakeJobs{entries: map[string][]journal.Entry{
		"job-1": {{Seq: 1, Kind: "curation", Payload: `{"Category":"news"}`}},
	}}})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := get(t, handler, "/jobs/job-1/events")
	var got []struct {
		Seq     int            `json:"seq"`
		Kind    string         `json:"kind"`
		Payload map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(got) != 1 || got[0].Kind != "curation" || got[0].Payload["Category"] != "news" {
		t.Fatalf("unexpected events %+v", got)
	}
}

// TestNewHandlerHidesErrors ensures source failures become 500s.
func TestNewHandlerHidesErrors(t *testing.T) {
	handler, err := NewHandler(Config{Jobs: &fakeJobs{err: errors.New("disk gone")}})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := get(t, handler, "/")
	if resp.Code != http.StatusInternalServerError || strings.Contains(resp.Body.String(), "disk gone") {
		t.Fatalf("unexpected response %d %q", resp.Code, resp.Body.String())
	}
}

// TestNewHandlerServesDatabase ensures the journal endpoint returns the file content.
func TestNewHandlerServesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.duckdb")
	if err := os.WriteFile(dbPath, []byte("duckdb"), 0o644); err != nil {
		t.Fatalf("write temp db: %v", err)
	}
	handler, err := NewHandler(Config{Jobs: &fakeJobs{}, DBPath: dbPath})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := get(t, handler, "/data/journal.duckdb")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Body.String(); got != "duckdb" {
		t.Fatalf("unexpected db payload: %s", got)
	}
}

// TestServeJournal runs the server against a real journal until cancelled.
func TestServeJournal(t *testing.T) {
	ctx := testutil.Context(t, 10*time.Second)
	j, err := journal.Open(ctx, filepath.Join(t.TempDir(), "journal.duckdb"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	if err := j.StartJob(ctx, "job-1", "Acme"); err != nil {
		t.Fatalf("start job: %v", err)
	}
	if err := j.Record(ctx, "job-1", 1, event.Complete{Report: "# Acme"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	serveCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- Serve(serveCtx, Config{Addr: addr, Jobs: j}) }()

	var body string
	testutil.Eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		resp, err := http.Get("http://" + addr + "/jobs/job-1")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		body = string(data)
		return resp.StatusCode == http.StatusOK
	}, "server did not serve the report")
	if !strings.Contains(body, "Acme") {
		t.Fatalf("unexpected body %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop")
	}
}

// TestServeReportsBusyAddress verifies a taken address fails fast.
func TestServeReportsBusyAddress(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })
	err = Serve(testutil.Context(t, 5*time.Second), Config{Addr: listener.Addr().String(), Jobs: &fakeJobs{}})
	if err == nil || !strings.Contains(err.Error(), "listen on") {
		t.Fatalf("expected listen error, got %v", err)
	}
	if err := Serve(testutil.Context(t, time.Second), Config{Jobs: &fakeJobs{}}); err == nil {
		t.Fatalf("expected missing addr error")
	}
}
