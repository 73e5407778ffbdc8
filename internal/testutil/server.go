package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// SubmitRecord captures one POST /research request seen by the backend.
type SubmitRecord struct {
	Body      map[string]any
	RequestID string
}

// Backend is an in-memory research service speaking the SSE protocol.
type Backend struct {
	BaseURL string

	mu           sync.Mutex
	server       *httptest.Server
	jobs         []string
	submitStatus int
	streams      map[string][]string
	holds        map[string]chan struct{}
	reports      map[string]string
	submits      []SubmitRecord
	openStreams  int
	streamOpens  map[string]int
	pdf          []byte
}

// StartBackend launches the fake research service for the test lifetime.
func StartBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		submitStatus: http.StatusOK,
		streams:      map[string][]string{},
		holds:        map[string]chan struct{}{},
		reports:      map[string]string{},
		streamOpens:  map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /research", b.handleSubmit)
	mux.HandleFunc("GET /research/{id}/stream", b.handleStream)
	mux.HandleFunc("GET /research/{id}/report", b.handleReport)
	mux.HandleFunc("POST /generate-pdf", b.handlePDF)
	b.server = httptest.NewServer(mux)
	b.BaseURL = b.server.URL
	t.Cleanup(b.Close)
	return b
}

// Close releases held streams and stops the server.
func (b *Backend) Close() {
	b.mu.Lock()
	for id, hold := range b.holds {
		close(hold)
		delete(b.holds, id)
	}
	b.mu.Unlock()
	b.server.Close()
}

// QueueJob registers the id returned by the next submission and the
// payloads its stream will deliver.
func (b *Backend) QueueJob(jobID string, payloads ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobs = append(b.jobs, jobID)
	b.streams[jobID] = payloads
}

// SetStream replaces the payloads delivered for a job id.
func (b *Backend) SetStream(jobID string, payloads ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streams[jobID] = payloads
}

// HoldOpen keeps the job stream open after its payloads until release is called.
func (b *Backend) HoldOpen(jobID string) (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	hold := make(chan struct{})
	b.holds[jobID] = hold
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if current, ok := b.holds[jobID]; ok && current == hold {
				delete(b.holds, jobID)
				close(hold)
			}
		})
	}
}

// FailSubmissions makes POST /research answer with status.
func (b *Backend) FailSubmissions(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitStatus = status
}

// SetReport stores the final report served for a job id.
func (b *Backend) SetReport(jobID, report string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reports[jobID] = report
}

// SetPDF sets the document returned by POST /generate-pdf.
func (b *Backend) SetPDF(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pdf = data
}

// Submissions returns the submissions received so far.
func (b *Backend) Submissions() []SubmitRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]SubmitRecord(nil), b.submits...)
}

// OpenStreams reports streams currently being served.
func (b *Backend) OpenStreams() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openStreams
}

// StreamOpens reports how many times a job stream was requested.
func (b *Backend) StreamOpens(jobID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streamOpens[jobID]
}

func (b *Backend) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"detail":"bad request"}`, http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	b.submits = append(b.submits, SubmitRecord{Body: body, RequestID: r.Header.Get("X-Request-ID")})
	status := b.submitStatus
	jobID := ""
	if len(b.jobs) > 0 {
		jobID = b.jobs[0]
		b.jobs = b.jobs[1:]
	}
	b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, `{"detail":"submission rejected"}`)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "accepted",
		"job_id":  jobID,
		"message": "Research started.",
	})
}

func (b *Backend) handleStream(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	b.mu.Lock()
	payloads, ok := b.streams[jobID]
	hold := b.holds[jobID]
	b.streamOpens[jobID]++
	b.openStreams++
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.openStreams--
		b.mu.Unlock()
	}()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}
	for _, payload := range payloads {
		_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
		if flusher != nil {
			flusher.Flush()
		}
	}
	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
		}
	}
}

func (b *Backend) handleReport(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	b.mu.Lock()
	report, ok := b.reports[jobID]
	_, known := b.streams[jobID]
	b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case ok:
		_ = json.NewEncoder(w).Encode(map[string]string{"report": report})
	case known:
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "processing", "message": "Report not ready yet"})
	default:
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Job not found"})
	}
}

func (b *Backend) handlePDF(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReportContent string `json:"report_content"`
		CompanyName   string `json:"company_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ReportContent == "" {
		http.Error(w, `{"detail":"report_content required"}`, http.StatusInternalServerError)
		return
	}
	b.mu.Lock()
	pdf := b.pdf
	b.mu.Unlock()
	if pdf == nil {
		pdf = []byte("%PDF-1.4\n%fake\n")
	}
	name := body.CompanyName
	if name == "" {
		name = "research"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_report.pdf"`, name))
	_, _ = w.Write(pdf)
}
