package live

import (
	"time"

	"dossier/internal/progress"
)

// Section is a collapsible part of the progress view.
type Section int

const (
	SectionQueries Section = iota
	SectionEnrichment
	SectionBriefings
)

// Sections lists every collapsible section in display order.
var Sections = []Section{SectionQueries, SectionEnrichment, SectionBriefings}

func (s Section) String() string {
	switch s {
	case SectionQueries:
		return "queries"
	case SectionEnrichment:
		return "enrichment"
	case SectionBriefings:
		return "briefings"
	default:
		return "section"
	}
}

// State captures the live UI state for one job.
type State struct {
	JobID     string
	Company   string
	StartedAt time.Time
	EndedAt   time.Time
	Progress  progress.State
	// Collapsed sections are rendered as a single summary line.
	Collapsed map[Section]bool
	// ScrollToStatus is set by the policy and cleared once the view scrolled.
	ScrollToStatus bool
	Notices        []string
	Err            string
	Done           bool
}

// NewState returns the state of a freshly started job.
func NewState(jobID, company string, now time.Time) State {
	return State{
		JobID:     jobID,
		Company:   company,
		StartedAt: now,
		Progress:  progress.New(),
		Collapsed: map[Section]bool{},
	}
}
