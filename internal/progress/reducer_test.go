package progress

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dossier/internal/event"
	"dossier/internal/phase"
	"dossier/internal/testutil"
)

// TestReduceQueryLifecycle verifies a query moves from streaming to finalized exactly once.
func TestReduceQueryLifecycle(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := New()
		state = apply(state,
			event.QueryGenerating{Category: "company_analyzer", Number: 1, Query: "acme"},
			event.QueryGenerating{Category: "company_analyzer", Number: 1, Query: "acme revenue"},
		)
		if got := state.StreamingQueries[QueryKey{"company_analyzer", 1}].Text; got != "acme revenue" {
			t.Fatalf("expected latest partial text, got %q", got)
		}
		state = apply(state,
			event.QueryGenerated{Category: "company_analyzer", Number: 1, Query: "acme revenue 2024"},
			event.QueryGenerated{Category: "company_analyzer", Number: 1, Query: "acme revenue 2024"},
			event.QueryGenerating{Category: "company_analyzer", Number: 1, Query: "late partial"},
		)
		if len(state.StreamingQueries) != 0 {
			t.Fatalf("expected no streaming queries, got %v", state.StreamingQueries)
		}
		want := []Query{{Category: "company_analyzer", Number: 1, Text: "acme revenue 2024", Complete: true}}
		if diff := cmp.Diff(want, state.Queries); diff != "" {
			t.Fatalf("finalized queries mismatch (-want +got):\n%s", diff)
		}
		if state.Phase != phase.Search {
			t.Fatalf("expected search phase, got %s", state.Phase)
		}
	})
}

// TestReduceQueriesKeepCompletionOrder verifies insertion order is completion order.
func TestReduceQueriesKeepCompletionOrder(t *testing.T) {
	state := apply(New(),
		event.QueryGenerating{Category: "news_scanner", Number: 1, Query: "a"},
		event.QueryGenerating{Category: "financial_analyzer", Number: 1, Query: "b"},
		event.QueryGenerated{Category: "financial_analyzer", Number: 1, Query: "b!"},
		event.QueryGenerated{Category: "news_scanner", Number: 1, Query: "a!"},
	)
	if len(state.Queries) != 2 || state.Queries[0].Category != "financial_analyzer" || state.Queries[1].Category != "news_scanner" {
		t.Fatalf("unexpected order: %+v", state.Queries)
	}
}

// TestReduceCurationResetsCounter verifies curation restart semantics.
func TestReduceCurationResetsCounter(t *testing.T) {
	state := apply(New(),
		event.Curation{Category: "news", Total: intPtr(5)},
		event.Enrichment{Category: "news", Enriched: intPtr(3)},
	)
	if got := state.Enrichment["news"]; got != (Counter{Total: 5, Enriched: 3}) {
		t.Fatalf("expected 3/5, got %+v", got)
	}
	state = apply(state, event.Curation{Category: "news", Total: intPtr(7)})
	if got := state.Enrichment["news"]; got != (Counter{Total: 7, Enriched: 0}) {
		t.Fatalf("expected counter reset to 0/7, got %+v", got)
	}
	state = apply(state, event.Curation{Category: "company"})
	if got := state.Enrichment["company"]; got != (Counter{}) {
		t.Fatalf("expected zero total when absent, got %+v", got)
	}
}

// TestReduceEnrichmentWithoutCounter verifies enrichment never creates counters.
func TestReduceEnrichmentWithoutCounter(t *testing.T) {
	state := apply(New(), event.Enrichment{Category: "news", Enriched: intPtr(4)})
	if state.Enrichment != nil {
		t.Fatalf("expected no counters, got %v", state.Enrichment)
	}
	if state.Phase != phase.Enrichment {
		t.Fatalf("expected enrichment phase, got %s", state.Phase)
	}
	state = apply(state,
		event.Curation{Category: "company", Total: intPtr(2)},
		event.Enrichment{Category: "news", Enriched: intPtr(4)},
		event.Enrichment{Message: "Enriching 4 categories"},
	)
	if len(state.Enrichment) != 1 {
		t.Fatalf("expected only the curated counter, got %v", state.Enrichment)
	}
}

// TestReduceEnrichmentNeverDecreases verifies counters are monotonic.
func TestReduceEnrichmentNeverDecreases(t *testing.T) {
	state := apply(New(),
		event.Curation{Category: "news", Total: intPtr(5)},
		event.Enrichment{Category: "news", Enriched: intPtr(4)},
		event.Enrichment{Category: "news", Enriched: intPtr(2)},
	)
	if got := state.Enrichment["news"].Enriched; got != 4 {
		t.Fatalf("expected enriched to stay at 4, got %d", got)
	}
}

// TestReducePhaseNeverRegresses verifies monotonic phase within a job.
func TestReducePhaseNeverRegresses(t *testing.T) {
	state := apply(New(),
		event.Curation{Category: "news", Total: intPtr(1)},
		event.Progress{Step: "briefing"},
		event.QueryGenerated{Category: "news_scanner", Number: 9, Query: "late"},
		event.Progress{Step: "grounding"},
	)
	if state.Phase != phase.Briefing {
		t.Fatalf("expected briefing phase, got %s", state.Phase)
	}
	if state.Status.Step != "Search" {
		t.Fatalf("expected status to follow last progress step, got %q", state.Status.Step)
	}
}

// TestReduceCompleteSupersedesChunks verifies the final report is authoritative.
func TestReduceCompleteSupersedesChunks(t *testing.T) {
	state := apply(New(), event.ReportChunk{Chunk: "Hello "}, event.ReportChunk{Chunk: "world"})
	if state.Report != "Hello world" || !state.ReportStreaming {
		t.Fatalf("expected streamed report, got %q streaming=%t", state.Report, state.ReportStreaming)
	}
	next, outcome := Reduce(state, event.Complete{Report: "FINAL"})
	if next.Report != "FINAL" {
		t.Fatalf("expected FINAL, got %q", next.Report)
	}
	if next.ReportStreaming || !next.Terminal || !outcome.Terminal {
		t.Fatalf("expected terminal, non-streaming state")
	}
	if next.Phase != phase.Complete {
		t.Fatalf("expected complete phase, got %s", next.Phase)
	}
}

// TestReduceIgnoresEventsAfterTerminal verifies no processing after a terminal event.
func TestReduceIgnoresEventsAfterTerminal(t *testing.T) {
	state := apply(New(), event.ReportChunk{Chunk: "partial"}, event.Error{Message: "boom"})
	if state.Error != "boom" || !state.Terminal {
		t.Fatalf("expected terminal error state, got %+v", state)
	}
	if state.Report != "partial" {
		t.Fatalf("expected partial report to remain, got %q", state.Report)
	}
	next, outcome := Reduce(state, event.Complete{Report: "late"})
	if outcome.Applied {
		t.Fatalf("expected event after terminal to be ignored")
	}
	if next.Report != "partial" {
		t.Fatalf("expected report unchanged, got %q", next.Report)
	}
}

// TestReduceBriefingsSignalOnce verifies all-briefings-complete fires on the last flip only.
func TestReduceBriefingsSignalOnce(t *testing.T) {
	state := New()
	signals := 0
	for _, category := range []string{"company", "industry", "financial", "news", "news", "company"} {
		var outcome Outcome
		state, outcome = Reduce(state, event.BriefingComplete{Category: category})
		if outcome.AllBriefingsComplete {
			signals++
		}
	}
	if signals != 1 {
		t.Fatalf("expected one signal, got %d", signals)
	}
	if !state.AllBriefingsDone() || state.BriefingsDone() != 4 {
		t.Fatalf("expected all briefings done")
	}
}

// TestReduceBriefingIgnoresUnknownCategory verifies stray categories neither
// extend the checklist nor count toward completion.
func TestReduceBriefingIgnoresUnknownCategory(t *testing.T) {
	state := New()
	for _, category := range []string{"company", "industry", "financial", "rumors"} {
		var outcome Outcome
		state, outcome = Reduce(state, event.BriefingComplete{Category: category})
		if outcome.AllBriefingsComplete {
			t.Fatalf("unexpected completion signal after %q", category)
		}
	}
	want := map[string]bool{"company": true, "industry": true, "financial": true, "news": false}
	if diff := cmp.Diff(want, state.Briefings); diff != "" {
		t.Fatalf("unexpected briefings (-want +got):\n%s", diff)
	}
	if state.AllBriefingsDone() || state.BriefingsDone() != 3 {
		t.Fatalf("expected three of four briefings done, got %d", state.BriefingsDone())
	}
}

// TestReduceStatusMessages verifies status defaults and labels.
func TestReduceStatusMessages(t *testing.T) {
	state := apply(New(), event.ResearchInit{Company: "Acme", Step: "Initializing"})
	if state.Status != (Status{Step: "Initializing", Message: researchInitMessage}) || state.Company != "Acme" {
		t.Fatalf("unexpected research_init status %+v", state.Status)
	}
	state = apply(state, event.CrawlStart{})
	if state.Status.Message != crawlStartMessage {
		t.Fatalf("expected crawl fallback, got %q", state.Status.Message)
	}
	state = apply(state, event.BriefingStart{Category: "news", TotalDocs: 4, Step: "Briefing"})
	if state.Status.Message != "Generating news briefing from 4 documents" {
		t.Fatalf("unexpected briefing message %q", state.Status.Message)
	}
	state = apply(state, event.ReportChunk{Chunk: "x", Step: "Editor"})
	if state.Status != (Status{Step: reportStreamingStep, Message: reportStreamingMessage}) {
		t.Fatalf("unexpected chunk status %+v", state.Status)
	}
}

// TestReduceUnknownKind verifies unknown kinds display their raw identifier.
func TestReduceUnknownKind(t *testing.T) {
	state := apply(New(), event.Curation{Category: "news"})
	state = apply(state, event.Unknown{Type: "crawl_success", Step: "Initial Site Scrape"})
	if state.Status.Step != "crawl_success" {
		t.Fatalf("expected raw identifier, got %q", state.Status.Step)
	}
	if state.Phase != phase.Enrichment {
		t.Fatalf("expected phase unchanged, got %s", state.Phase)
	}
}

// TestReduceDoesNotMutateInput verifies snapshots are copy-on-write.
func TestReduceDoesNotMutateInput(t *testing.T) {
	before := apply(New(),
		event.Curation{Category: "news", Total: intPtr(5)},
		event.QueryGenerating{Category: "c", Number: 1, Query: "q"},
		event.QueryGenerated{Category: "c", Number: 2, Query: "done"},
	)
	snapshot := clone(before)
	_ = apply(before,
		event.Enrichment{Category: "news", Enriched: intPtr(2)},
		event.QueryGenerated{Category: "c", Number: 1, Query: "q!"},
		event.BriefingComplete{Category: "news"},
	)
	if diff := cmp.Diff(snapshot, before); diff != "" {
		t.Fatalf("input snapshot mutated (-want +got):\n%s", diff)
	}
}

func apply(state State, events ...event.Event) State {
	for _, ev := range events {
		state, _ = Reduce(state, ev)
	}
	return state
}

func clone(state State) State {
	out := state
	out.StreamingQueries = map[QueryKey]Query{}
	for k, v := range state.StreamingQueries {
		out.StreamingQueries[k] = v
	}
	out.Queries = append([]Query(nil), state.Queries...)
	out.Enrichment = map[string]Counter{}
	for k, v := range state.Enrichment {
		out.Enrichment[k] = v
	}
	out.Briefings = map[string]bool{}
	for k, v := range state.Briefings {
		out.Briefings[k] = v
	}
	return out
}

func intPtr(v int) *int { return &v }

// runWithTimeout executes a test body with a timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("test timed out")
	}
}

// TestFailKeepsPartialProgress verifies a transport failure is terminal without clearing state.
func TestFailKeepsPartialProgress(t *testing.T) {
	state := apply(New(), event.ReportChunk{Chunk: "partial"})
	state = Fail(state, "Connection lost or server error")
	if !state.Terminal || state.Error != "Connection lost or server error" {
		t.Fatalf("expected terminal error state, got %+v", state)
	}
	if state.Report != "partial" {
		t.Fatalf("expected partial report kept, got %q", state.Report)
	}
	again := Fail(state, "other")
	if again.Error != "Connection lost or server error" {
		t.Fatalf("expected first error kept, got %q", again.Error)
	}
}
