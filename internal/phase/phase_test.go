package phase

import "testing"

// TestClassifyTable verifies every identifier in the fixed mapping.
func TestClassifyTable(t *testing.T) {
	cases := []struct {
		kind string
		step string
		want Phase
	}{
		{kind: "progress", step: "grounding", want: Search},
		{kind: "progress", step: "financial_analyst", want: Search},
		{kind: "progress", step: "news_scanner", want: Search},
		{kind: "progress", step: "industry_analyst", want: Search},
		{kind: "progress", step: "company_analyst", want: Search},
		{kind: "progress", step: "collector", want: Search},
		{kind: "query_generating", want: Search},
		{kind: "query_generated", want: Search},
		{kind: "research_init", want: Search},
		{kind: "crawl_start", want: Search},
		{kind: "progress", step: "curator", want: Enrichment},
		{kind: "progress", step: "enricher", want: Enrichment},
		{kind: "curation", want: Enrichment},
		{kind: "enrichment", want: Enrichment},
		{kind: "progress", step: "briefing", want: Briefing},
		{kind: "briefing_start", want: Briefing},
		{kind: "briefing_complete", want: Briefing},
		{kind: "report_compilation", want: Briefing},
		{kind: "report_chunk", want: Briefing},
		{kind: "complete", want: Complete},
	}
	for _, tc := range cases {
		got, ok := Classify(tc.kind, tc.step)
		if !ok {
			t.Fatalf("Classify(%q, %q) not classified", tc.kind, tc.step)
		}
		if got != tc.want {
			t.Fatalf("Classify(%q, %q) = %s, want %s", tc.kind, tc.step, got, tc.want)
		}
	}
}

// TestClassifyUnknown verifies unmapped identifiers hold the phase.
func TestClassifyUnknown(t *testing.T) {
	if _, ok := Classify("progress", "editor"); ok {
		t.Fatalf("expected editor step to be unclassified")
	}
	if _, ok := Classify("crawl_success", ""); ok {
		t.Fatalf("expected unknown kind to be unclassified")
	}
}

// TestAdvanceNeverRegresses verifies monotonic phase movement.
func TestAdvanceNeverRegresses(t *testing.T) {
	if got := Advance(None, Search); got != Search {
		t.Fatalf("expected search, got %s", got)
	}
	if got := Advance(Enrichment, Search); got != Enrichment {
		t.Fatalf("expected enrichment to hold, got %s", got)
	}
	if got := Advance(Briefing, Enrichment); got != Briefing {
		t.Fatalf("expected briefing to hold, got %s", got)
	}
	if got := Advance(Complete, Briefing); got != Complete {
		t.Fatalf("expected complete to be absorbing, got %s", got)
	}
	if got := Advance(Search, Complete); got != Complete {
		t.Fatalf("expected complete, got %s", got)
	}
}

// TestLabel verifies display labels and passthrough.
func TestLabel(t *testing.T) {
	cases := map[string]string{
		"grounding":     "Search",
		"curator":       "Enriching",
		"briefing":      "Briefing",
		"editor":        "Finalizing",
		"Website Crawl": "Website Crawl",
	}
	for step, want := range cases {
		if got := Label(step); got != want {
			t.Fatalf("Label(%q) = %q, want %q", step, got, want)
		}
	}
	if None.String() != "none" {
		t.Fatalf("expected none string")
	}
}

func TestAtLeast(t *testing.T) {
	if !Briefing.AtLeast(Enrichment) || !Briefing.AtLeast(Briefing) {
		t.Fatalf("expected briefing to be at least enrichment")
	}
	if Search.AtLeast(Briefing) || None.AtLeast(Search) {
		t.Fatalf("unexpected ordering")
	}
}
