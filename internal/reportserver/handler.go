package reportserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dossier/internal/export"
	"dossier/internal/journal"
)

// JobSource is the read side of the journal.
type JobSource interface {
	Jobs(ctx context.Context) ([]journal.JobSummary, error)
	Events(ctx context.Context, jobID string) ([]journal.Entry, error)
	Report(ctx context.Context, jobID string) (string, error)
}

// NewHandler builds the HTTP handler for the job index, reports and the
// journal file.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Jobs == nil {
		return nil, errors.New("reportserver: job source is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{jobs: cfg.Jobs, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.serveIndex)
	mux.HandleFunc("GET /jobs/{id}", h.serveReport)
	mux.HandleFunc("GET /jobs/{id}/events", h.serveEvents)
	if cfg.DBPath != "" {
		mux.Handle("/data/journal.duckdb", serveDatabase(cfg.DBPath))
	}
	return mux, nil
}

type handler struct {
	jobs   JobSource
	logger *zap.Logger
}

func (h *handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.Jobs(r.Context())
	if err != nil {
		h.fail(w, "list jobs", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := jobIndex(jobs).Render(r.Context(), w); err != nil {
		h.logger.Warn("render job index", zap.Error(err))
	}
}

func (h *handler) serveReport(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	report, err := h.jobs.Report(r.Context(), jobID)
	if errors.Is(err, journal.ErrNoReport) {
		http.Error(w, fmt.Sprintf("job %s has no final report", jobID), http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(w, "load report", err)
		return
	}
	page, err := export.RenderHTML(r.Context(), h.company(r.Context(), jobID), report)
	if err != nil {
		h.fail(w, "render report", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, page)
}

func (h *handler) serveEvents(w http.ResponseWriter, r *http.Request) {
	entries, err := h.jobs.Events(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "list events", err)
		return
	}
	type eventView struct {
		Seq        int             `json:"seq"`
		Kind       string          `json:"kind"`
		Payload    json.RawMessage `json:"payload"`
		ReceivedAt time.Time       `json:"received_at"`
	}
	out := make([]eventView, 0, len(entries))
	for _, entry := range entries {
		out = append(out, eventView{
			Seq:        entry.Seq,
			Kind:       entry.Kind,
			Payload:    json.RawMessage(entry.Payload),
			ReceivedAt: entry.ReceivedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// company looks up the company recorded for a job, if any.
func (h *handler) company(ctx context.Context, jobID string) string {
	jobs, err := h.jobs.Jobs(ctx)
	if err != nil {
		return ""
	}
	for _, job := range jobs {
		if job.JobID == jobID {
			return job.Company
		}
	}
	return ""
}

func (h *handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// serveDatabase serves the journal file from disk.
func serveDatabase(dbPath string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		http.ServeFile(w, r, dbPath)
	})
}
