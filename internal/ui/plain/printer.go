package plain

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"dossier/internal/phase"
	"dossier/internal/policy"
	"dossier/internal/progress"
)

// Printer writes progress as line-oriented text. It implements
// session.Observer and only prints what changed between snapshots.
type Printer struct {
	mu         sync.Mutex
	out        io.Writer
	last       progress.State
	reportSeen bool
}

// New builds a printer that writes to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out, last: progress.New()}
}

// OnJobStart announces a job and forgets the previous one.
func (p *Printer) OnJobStart(jobID, company string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = progress.New()
	p.reportSeen = false
	if company != "" {
		fmt.Fprintf(p.out, "Researching %s (job %s)\n", company, jobID)
		return
	}
	fmt.Fprintf(p.out, "Following job %s\n", jobID)
}

// OnSnapshot prints the differences from the previous snapshot.
func (p *Printer) OnSnapshot(state progress.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.last
	p.last = state

	if state.Phase != prev.Phase && state.Phase != phase.None {
		fmt.Fprintf(p.out, "== phase: %s\n", state.Phase)
	}
	if state.Status != prev.Status && state.Status.Message != "" && !state.ReportStreaming {
		if state.Status.Step != "" {
			fmt.Fprintf(p.out, "[%s] %s\n", state.Status.Step, state.Status.Message)
		} else {
			fmt.Fprintln(p.out, state.Status.Message)
		}
	}
	for _, query := range state.Queries[min(len(prev.Queries), len(state.Queries)):] {
		fmt.Fprintf(p.out, "  query %s #%d: %s\n", query.Category, query.Number, query.Text)
	}
	for _, category := range state.EnrichmentCategories() {
		counter := state.Enrichment[category]
		if before, ok := prev.Enrichment[category]; ok && before == counter {
			continue
		}
		fmt.Fprintf(p.out, "  enrichment %s: %d/%d\n", category, counter.Enriched, counter.Total)
	}
	for _, category := range progress.BriefingCategories {
		if state.Briefings[category] && !prev.Briefings[category] {
			fmt.Fprintf(p.out, "  briefing %s complete\n", category)
		}
	}
	if state.ReportStreaming && !p.reportSeen {
		p.reportSeen = true
		fmt.Fprintln(p.out, "Generating final report...")
	}
	if state.Terminal && !prev.Terminal {
		if state.Error != "" {
			fmt.Fprintf(p.out, "Error: %s\n", state.Error)
			return
		}
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, strings.TrimRight(state.Report, "\n"))
	}
}

// OnAction is a no-op; plain output has nothing to scroll or collapse.
func (p *Printer) OnAction(policy.Action) {}

// OnNotice prints a one-line message.
func (p *Printer) OnNotice(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, message)
}

// OnJobEnd prints a transport error that did not reach the snapshot.
func (p *Printer) OnJobEnd(err error) {
	if err == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last.Error == "" {
		fmt.Fprintf(p.out, "Error: %v\n", err)
	}
}
