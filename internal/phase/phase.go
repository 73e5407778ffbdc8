package phase

// Phase is the coarse lifecycle stage of a research job.
type Phase string

const (
	// None means no phase has been observed yet.
	None       Phase = ""
	Search     Phase = "search"
	Enrichment Phase = "enrichment"
	Briefing   Phase = "briefing"
	Complete   Phase = "complete"
)

// rank orders phases; a higher rank is further along.
func rank(p Phase) int {
	switch p {
	case Search:
		return 1
	case Enrichment:
		return 2
	case Briefing:
		return 3
	case Complete:
		return 4
	default:
		return 0
	}
}

// String returns the wire name, or "none" before the first phase.
func (p Phase) String() string {
	if p == None {
		return "none"
	}
	return string(p)
}

// stepPhases maps pipeline node identifiers to phases.
var stepPhases = map[string]Phase{
	"grounding":         Search,
	"financial_analyst": Search,
	"news_scanner":      Search,
	"industry_analyst":  Search,
	"company_analyst":   Search,
	"collector":         Search,
	"curator":           Enrichment,
	"enricher":          Enrichment,
	"briefing":          Briefing,
}

// kindPhases maps event kinds to phases.
var kindPhases = map[string]Phase{
	"query_generating":   Search,
	"query_generated":    Search,
	"research_init":      Search,
	"crawl_start":        Search,
	"curation":           Enrichment,
	"enrichment":         Enrichment,
	"briefing":           Briefing,
	"briefing_start":     Briefing,
	"briefing_complete":  Briefing,
	"report_compilation": Briefing,
	"report_chunk":       Briefing,
	"complete":           Complete,
}

// Classify derives the phase for an event kind and optional step identifier.
// The step wins when it is classified; ok is false when neither is.
func Classify(kind, step string) (Phase, bool) {
	if step != "" {
		if p, ok := stepPhases[step]; ok {
			return p, true
		}
	}
	p, ok := kindPhases[kind]
	return p, ok
}

// Advance returns whichever of current and next is further along.
// Complete absorbs every later signal.
func Advance(current, next Phase) Phase {
	if rank(next) > rank(current) {
		return next
	}
	return current
}

// AtLeast reports whether p has reached other.
func (p Phase) AtLeast(other Phase) bool {
	return rank(p) >= rank(other)
}

var labels = map[string]string{
	"grounding":         "Search",
	"financial_analyst": "Search",
	"news_scanner":      "Search",
	"industry_analyst":  "Search",
	"company_analyst":   "Search",
	"collector":         "Search",
	"curator":           "Enriching",
	"enricher":          "Enriching",
	"briefing":          "Briefing",
	"editor":            "Finalizing",
}

// Label maps a step identifier to its short display label. Unmapped
// identifiers pass through unchanged.
func Label(step string) string {
	if label, ok := labels[step]; ok {
		return label
	}
	return step
}
