package live

import (
	"dossier/internal/policy"
	"dossier/internal/progress"
)

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventJobStart signals that a job is being followed.
	EventJobStart EventKind = iota
	// EventSnapshot delivers a new progress snapshot.
	EventSnapshot
	// EventAction delivers a scroll or collapse action.
	EventAction
	// EventNotice delivers a one-line message such as an export result.
	EventNotice
	// EventJobEnd signals that the stream is finished.
	EventJobEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind     EventKind
	JobID    string
	Company  string
	Snapshot progress.State
	Action   policy.Action
	Notice   string
	Err      error
}
