package progress

import (
	"fmt"
	"maps"
	"slices"

	"dossier/internal/event"
	"dossier/internal/phase"
)

const (
	processingMessage      = "Processing..."
	researchInitMessage    = "Initiating research..."
	crawlStartMessage      = "Crawling company website..."
	reportCompilingMessage = "Compiling final report..."
	reportStreamingMessage = "Generating final report..."
	completeMessage        = "Research complete"
	reportStreamingStep    = "Finalizing"
)

// Outcome describes the side signals of applying one event.
type Outcome struct {
	// Applied is false when the state was already terminal.
	Applied bool
	// Terminal is true when the event ended the job.
	Terminal bool
	// AllBriefingsComplete is true only on the event that completed the
	// last outstanding briefing.
	AllBriefingsComplete bool
}

// Reduce applies one event to a snapshot and returns the next snapshot.
func Reduce(state State, ev event.Event) (State, Outcome) {
	if state.Terminal || ev == nil {
		return state, Outcome{}
	}
	var outcome Outcome
	switch typed := ev.(type) {
	case event.Progress:
		state.Status = Status{Step: phase.Label(typed.Step), Message: processingMessage}
		state = advance(state, ev)
	case event.QueryGenerating:
		state = applyQueryGenerating(state, typed)
		state.Phase = phase.Advance(state.Phase, phase.Search)
	case event.QueryGenerated:
		state = applyQueryGenerated(state, typed)
		state.Phase = phase.Advance(state.Phase, phase.Search)
	case event.ResearchInit:
		if typed.Company != "" {
			state.Company = typed.Company
		}
		state.Status.Message = firstNonEmpty(typed.Message, researchInitMessage)
		state.Phase = phase.Advance(state.Phase, phase.Search)
	case event.CrawlStart:
		state.Status.Message = firstNonEmpty(typed.Message, crawlStartMessage)
		state.Phase = phase.Advance(state.Phase, phase.Search)
	case event.Curation:
		state = applyCuration(state, typed)
		state.Phase = phase.Advance(state.Phase, phase.Enrichment)
	case event.Enrichment:
		state = applyEnrichment(state, typed)
		state.Phase = phase.Advance(state.Phase, phase.Enrichment)
	case event.BriefingStart:
		state.Status.Message = fmt.Sprintf("Generating %s briefing from %d documents", typed.Category, typed.TotalDocs)
		state.Phase = phase.Advance(state.Phase, phase.Briefing)
	case event.BriefingComplete:
		wasDone := state.AllBriefingsDone()
		state = applyBriefingComplete(state, typed)
		outcome.AllBriefingsComplete = !wasDone && state.AllBriefingsDone()
		state.Phase = phase.Advance(state.Phase, phase.Briefing)
	case event.ReportCompilation:
		state.Status.Message = firstNonEmpty(typed.Message, reportCompilingMessage)
		state.Phase = phase.Advance(state.Phase, phase.Briefing)
	case event.ReportChunk:
		state.ReportStreaming = true
		state.Report += typed.Chunk
		state.Status = Status{Step: reportStreamingStep, Message: reportStreamingMessage}
		state.Phase = phase.Advance(state.Phase, phase.Briefing)
	case event.Complete:
		state.ReportStreaming = false
		state.Report = typed.Report
		state.Status.Message = completeMessage
		state.Phase = phase.Advance(state.Phase, phase.Complete)
		state.Terminal = true
	case event.Error:
		state.Error = firstNonEmpty(typed.Message, "Unknown error")
		state.Terminal = true
	case event.Unknown:
		state.Status.Step = typed.Type
		if typed.Message != "" {
			state.Status.Message = typed.Message
		}
	}
	if step := event.StepOf(ev); step != "" && carriesDisplayStep(ev) {
		state.Status.Step = phase.Label(step)
	}
	state.Applied++
	outcome.Applied = true
	outcome.Terminal = state.Terminal
	return state, outcome
}

// carriesDisplayStep reports whether the event's step field should replace
// the displayed step. Progress, report chunks and unknown kinds set the step
// themselves.
func carriesDisplayStep(ev event.Event) bool {
	switch ev.(type) {
	case event.ResearchInit, event.CrawlStart, event.BriefingStart, event.BriefingComplete, event.Error:
		return true
	default:
		return false
	}
}

// advance moves the phase forward according to the classifier.
func advance(state State, ev event.Event) State {
	if next, ok := phase.Classify(string(ev.Kind()), event.StepOf(ev)); ok {
		state.Phase = phase.Advance(state.Phase, next)
	}
	return state
}

// applyQueryGenerating upserts a streaming query unless it was finalized.
func applyQueryGenerating(state State, ev event.QueryGenerating) State {
	key := QueryKey{Category: ev.Category, Number: ev.Number}
	if state.hasFinalized(key) {
		return state
	}
	streaming := maps.Clone(state.StreamingQueries)
	if streaming == nil {
		streaming = map[QueryKey]Query{}
	}
	streaming[key] = Query{Category: ev.Category, Number: ev.Number, Text: ev.Query}
	state.StreamingQueries = streaming
	return state
}

// applyQueryGenerated moves a query from the streaming map to the finalized list.
func applyQueryGenerated(state State, ev event.QueryGenerated) State {
	key := QueryKey{Category: ev.Category, Number: ev.Number}
	if _, ok := state.StreamingQueries[key]; ok {
		streaming := maps.Clone(state.StreamingQueries)
		delete(streaming, key)
		state.StreamingQueries = streaming
	}
	if state.hasFinalized(key) {
		return state
	}
	queries := make([]Query, len(state.Queries), len(state.Queries)+1)
	copy(queries, state.Queries)
	state.Queries = append(queries, Query{
		Category: ev.Category,
		Number:   ev.Number,
		Text:     ev.Query,
		Complete: true,
	})
	return state
}

// applyCuration creates or restarts a category counter.
func applyCuration(state State, ev event.Curation) State {
	if ev.Category == "" {
		return state
	}
	total := 0
	if ev.Total != nil {
		total = *ev.Total
	}
	counters := maps.Clone(state.Enrichment)
	if counters == nil {
		counters = map[string]Counter{}
	}
	counters[ev.Category] = Counter{Total: total, Enriched: 0}
	state.Enrichment = counters
	if ev.Message != "" {
		state.Status.Message = ev.Message
	}
	return state
}

// applyEnrichment raises an existing counter; it never creates one.
func applyEnrichment(state State, ev event.Enrichment) State {
	if ev.Message != "" {
		state.Status.Message = ev.Message
	}
	if ev.Category == "" || ev.Enriched == nil {
		return state
	}
	current, ok := state.Enrichment[ev.Category]
	if !ok {
		return state
	}
	if *ev.Enriched <= current.Enriched {
		return state
	}
	counters := maps.Clone(state.Enrichment)
	current.Enriched = *ev.Enriched
	counters[ev.Category] = current
	state.Enrichment = counters
	return state
}

// applyBriefingComplete marks a briefing category as done.
func applyBriefingComplete(state State, ev event.BriefingComplete) State {
	if !slices.Contains(BriefingCategories, ev.Category) || state.Briefings[ev.Category] {
		return state
	}
	briefings := maps.Clone(state.Briefings)
	if briefings == nil {
		briefings = map[string]bool{}
	}
	briefings[ev.Category] = true
	state.Briefings = briefings
	state.Status.Message = fmt.Sprintf("Completed %s briefing", ev.Category)
	return state
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Fail marks the job terminal with a transport-level error. Accumulated
// progress is kept for display.
func Fail(state State, message string) State {
	if state.Terminal {
		return state
	}
	state.Error = firstNonEmpty(message, "Unknown error")
	state.Terminal = true
	return state
}
