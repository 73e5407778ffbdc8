package policy

import (
	"sync"
	"time"

	"dossier/internal/event"
)

// Action is a UI affordance triggered by the event stream.
type Action int

const (
	// ScrollToStatus brings the status panel into view.
	ScrollToStatus Action = iota + 1
	// CollapseQueries folds the query list.
	CollapseQueries
	// CollapseEnrichment folds the enrichment counters.
	CollapseEnrichment
	// CollapseBriefings folds the briefing checklist.
	CollapseBriefings
)

func (a Action) String() string {
	switch a {
	case ScrollToStatus:
		return "scroll_to_status"
	case CollapseQueries:
		return "collapse_queries"
	case CollapseEnrichment:
		return "collapse_enrichment"
	case CollapseBriefings:
		return "collapse_briefings"
	default:
		return "unknown"
	}
}

const (
	DefaultCollapseDelay          = time.Second
	DefaultBriefingsCollapseDelay = 2 * time.Second
)

// Scheduler runs f once after d and returns a function that cancels it.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Options configures delays and the timer source.
type Options struct {
	CollapseDelay          time.Duration
	BriefingsCollapseDelay time.Duration
	Scheduler              Scheduler
}

// Policy decides when to auto-scroll and auto-collapse. Scroll fires at most
// once per job; each collapse is scheduled at most once per job. Reset
// cancels everything pending.
type Policy struct {
	mu                     sync.Mutex
	emit                   func(Action)
	scheduler              Scheduler
	collapseDelay          time.Duration
	briefingsCollapseDelay time.Duration
	generation             uint64
	scrolled               bool
	scheduled              map[Action]bool
	timers                 []func() bool
}

// New builds a policy that reports actions through emit. emit may be called
// from timer goroutines with the policy lock held, so it must not block or
// call back into the policy.
func New(emit func(Action), opts Options) *Policy {
	if emit == nil {
		emit = func(Action) {}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = realScheduler{}
	}
	if opts.CollapseDelay <= 0 {
		opts.CollapseDelay = DefaultCollapseDelay
	}
	if opts.BriefingsCollapseDelay <= 0 {
		opts.BriefingsCollapseDelay = DefaultBriefingsCollapseDelay
	}
	return &Policy{
		emit:                   emit,
		scheduler:              opts.Scheduler,
		collapseDelay:          opts.CollapseDelay,
		briefingsCollapseDelay: opts.BriefingsCollapseDelay,
		scheduled:              map[Action]bool{},
	}
}

// Observe feeds one applied event into the policy.
func (p *Policy) Observe(kind event.Kind, allBriefingsComplete bool) {
	p.mu.Lock()
	scroll := false
	switch kind {
	case event.KindProgress, event.KindQueryGenerated, event.KindCuration, event.KindBriefingStart:
		if !p.scrolled {
			p.scrolled = true
			scroll = true
		}
	}
	switch kind {
	case event.KindCuration:
		p.scheduleLocked(CollapseQueries, p.collapseDelay)
	case event.KindBriefingStart:
		p.scheduleLocked(CollapseEnrichment, p.collapseDelay)
	}
	if allBriefingsComplete {
		p.scheduleLocked(CollapseBriefings, p.briefingsCollapseDelay)
	}
	if scroll {
		p.emit(ScrollToStatus)
	}
	p.mu.Unlock()
}

// Reset cancels pending collapses and re-arms the scroll for the next job.
func (p *Policy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	for _, stop := range p.timers {
		stop()
	}
	p.timers = nil
	p.scrolled = false
	p.scheduled = map[Action]bool{}
}

// Pending reports how many collapses are scheduled and not yet reset.
func (p *Policy) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.timers)
}

func (p *Policy) scheduleLocked(action Action, delay time.Duration) {
	if p.scheduled[action] {
		return
	}
	p.scheduled[action] = true
	generation := p.generation
	stop := p.scheduler.AfterFunc(delay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.generation == generation {
			p.emit(action)
		}
	})
	p.timers = append(p.timers, stop)
}
