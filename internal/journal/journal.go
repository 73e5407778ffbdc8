package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"dossier/internal/event"
)

//go:embed schema.sql
var schemaDDL string

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// JobSummary is one journaled job with its event count.
type JobSummary struct {
	JobID      string
	Company    string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Events     int
}

// Entry is one journaled event.
type Entry struct {
	Seq        int
	Kind       string
	Payload    string
	ReceivedAt time.Time
}

// Journal records received stream events in a DuckDB file for diagnostics.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates a journal at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal: path is required")
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// StartJob registers a job. Restarting a journaled job discards the events of
// its previous run.
func (j *Journal) StartJob(ctx context.Context, jobID, company string) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start job: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("clear previous run: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO jobs (job_id, company, status, started_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (job_id) DO UPDATE SET status = excluded.status, started_at = excluded.started_at, finished_at = NULL`,
		jobID,
		company,
		StatusRunning,
		j.now().UTC(),
	); err != nil {
		return fmt.Errorf("start job: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("start job: %w", err)
	}
	return nil
}

// Record appends one event for a job.
func (j *Journal) Record(ctx context.Context, jobID string, seq int, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := j.db.ExecContext(
		ctx,
		`INSERT INTO events (event_id, job_id, seq, kind, payload, received_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		jobID,
		seq,
		string(ev.Kind()),
		string(payload),
		j.now().UTC(),
	); err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// FinishJob stores the final status of a job.
func (j *Journal) FinishJob(ctx context.Context, jobID, status string) error {
	if _, err := j.db.ExecContext(
		ctx,
		`UPDATE jobs SET status = ?, finished_at = ? WHERE job_id = ?`,
		status,
		j.now().UTC(),
		jobID,
	); err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// Jobs lists journaled jobs, most recent first.
func (j *Journal) Jobs(ctx context.Context) ([]JobSummary, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT j.job_id, COALESCE(j.company, ''), j.status, j.started_at, j.finished_at, COUNT(e.event_id)
		FROM jobs j
		LEFT JOIN events e ON e.job_id = j.job_id
		GROUP BY j.job_id, j.company, j.status, j.started_at, j.finished_at
		ORDER BY j.started_at DESC, j.job_id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()
	var out []JobSummary
	for rows.Next() {
		var summary JobSummary
		var finished sql.NullTime
		if err := rows.Scan(&summary.JobID, &summary.Company, &summary.Status, &summary.StartedAt, &finished, &summary.Events); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if finished.Valid {
			at := finished.Time
			summary.FinishedAt = &at
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// Events returns the journaled events of a job in sequence order.
func (j *Journal) Events(ctx context.Context, jobID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT seq, kind, payload, received_at FROM events WHERE job_id = ? ORDER BY seq`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Seq, &entry.Kind, &entry.Payload, &entry.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// ErrNoReport is returned when a job has no journaled completion.
var ErrNoReport = errors.New("journal: job has no final report")

// Report returns the final report carried by the last completion of a job.
func (j *Journal) Report(ctx context.Context, jobID string) (string, error) {
	var payload string
	err := j.db.QueryRowContext(ctx,
		`SELECT payload FROM events WHERE job_id = ? AND kind = ? ORDER BY seq DESC LIMIT 1`,
		jobID, string(event.KindComplete),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoReport
	}
	if err != nil {
		return "", fmt.Errorf("load report: %w", err)
	}
	var complete event.Complete
	if err := json.Unmarshal([]byte(payload), &complete); err != nil {
		return "", fmt.Errorf("decode report: %w", err)
	}
	return complete.Report, nil
}
