package progress

import (
	"sort"

	"dossier/internal/phase"
)

// BriefingCategories lists the fixed briefing categories in display order.
var BriefingCategories = []string{"company", "industry", "financial", "news"}

// Status is the current display step and message.
type Status struct {
	Step    string
	Message string
}

// QueryKey identifies a search query.
type QueryKey struct {
	Category string
	Number   int
}

// Query is a search query, streaming or finalized.
type Query struct {
	Category string
	Number   int
	Text     string
	Complete bool
}

// Key returns the identity of the query.
func (q Query) Key() QueryKey {
	return QueryKey{Category: q.Category, Number: q.Number}
}

// Counter tracks enrichment progress for one category.
type Counter struct {
	Total    int
	Enriched int
}

// State is an immutable snapshot of job progress. Reduce never mutates the
// maps or slices of a snapshot it was given.
type State struct {
	Status           Status
	Phase            phase.Phase
	Company          string
	StreamingQueries map[QueryKey]Query
	Queries          []Query
	Enrichment       map[string]Counter
	Briefings        map[string]bool
	Report           string
	ReportStreaming  bool
	Error            string
	Terminal         bool
	Applied          int
}

// New returns the state of a job that has not started.
func New() State {
	briefings := make(map[string]bool, len(BriefingCategories))
	for _, category := range BriefingCategories {
		briefings[category] = false
	}
	return State{
		StreamingQueries: map[QueryKey]Query{},
		Briefings:        briefings,
	}
}

// Streaming returns the in-flight queries ordered by category and number.
func (s State) Streaming() []Query {
	out := make([]Query, 0, len(s.StreamingQueries))
	for _, q := range s.StreamingQueries {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// EnrichmentCategories returns the categories that have counters, sorted.
func (s State) EnrichmentCategories() []string {
	keys := make([]string, 0, len(s.Enrichment))
	for k := range s.Enrichment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BriefingsDone counts completed briefing categories.
func (s State) BriefingsDone() int {
	done := 0
	for _, category := range BriefingCategories {
		if s.Briefings[category] {
			done++
		}
	}
	return done
}

// AllBriefingsDone reports whether every briefing category is complete.
func (s State) AllBriefingsDone() bool {
	return s.BriefingsDone() == len(BriefingCategories)
}

// hasFinalized reports whether a query identity was already finalized.
func (s State) hasFinalized(key QueryKey) bool {
	for _, q := range s.Queries {
		if q.Key() == key {
			return true
		}
	}
	return false
}
