package event

// Kind is the wire discriminator carried in the "type" field.
type Kind string

const (
	KindProgress          Kind = "progress"
	KindQueryGenerating   Kind = "query_generating"
	KindQueryGenerated    Kind = "query_generated"
	KindResearchInit      Kind = "research_init"
	KindCrawlStart        Kind = "crawl_start"
	KindCuration          Kind = "curation"
	KindEnrichment        Kind = "enrichment"
	KindBriefingStart     Kind = "briefing_start"
	KindBriefingComplete  Kind = "briefing_complete"
	KindReportCompilation Kind = "report_compilation"
	KindReportChunk       Kind = "report_chunk"
	KindComplete          Kind = "complete"
	KindError             Kind = "error"
)

// Event is a decoded stream message. The set of implementations is closed;
// consumers switch on the concrete type.
type Event interface {
	Kind() Kind
	isEvent()
}

// Progress reports that the pipeline entered a new node.
type Progress struct {
	Step string
}

// QueryGenerating carries the partial text of a query still being written.
type QueryGenerating struct {
	Category string
	Number   int
	Query    string
}

// QueryGenerated carries a finalized query.
type QueryGenerated struct {
	Category string
	Number   int
	Query    string
}

// ResearchInit announces the start of research for a company.
type ResearchInit struct {
	Company string
	Message string
	Step    string
}

// CrawlStart announces a crawl of the company website.
type CrawlStart struct {
	URL     string
	Message string
	Step    string
}

// Curation announces curation of one document category. Total is nil when
// the payload omitted it.
type Curation struct {
	Category string
	Total    *int
	Message  string
}

// Enrichment reports enrichment progress. Category and Enriched are absent on
// the aggregate announcement the backend sends before per-category results.
type Enrichment struct {
	Category string
	Enriched *int
	Total    *int
	Message  string
}

// BriefingStart announces briefing generation for a category.
type BriefingStart struct {
	Category  string
	TotalDocs int
	Step      string
}

// BriefingComplete reports a finished category briefing.
type BriefingComplete struct {
	Category      string
	ContentLength int
	Step          string
}

// ReportCompilation announces compilation of the final report.
type ReportCompilation struct {
	Message string
}

// ReportChunk carries the next piece of the streaming report.
type ReportChunk struct {
	Chunk string
	Step  string
}

// Complete carries the authoritative final report.
type Complete struct {
	Report string
}

// Error reports a job failure.
type Error struct {
	Message  string
	Category string
	Step     string
}

// Unknown is any message whose kind is not recognised.
type Unknown struct {
	Type    string
	Step    string
	Message string
}

func (Progress) Kind() Kind          { return KindProgress }
func (QueryGenerating) Kind() Kind   { return KindQueryGenerating }
func (QueryGenerated) Kind() Kind    { return KindQueryGenerated }
func (ResearchInit) Kind() Kind      { return KindResearchInit }
func (CrawlStart) Kind() Kind        { return KindCrawlStart }
func (Curation) Kind() Kind          { return KindCuration }
func (Enrichment) Kind() Kind        { return KindEnrichment }
func (BriefingStart) Kind() Kind     { return KindBriefingStart }
func (BriefingComplete) Kind() Kind  { return KindBriefingComplete }
func (ReportCompilation) Kind() Kind { return KindReportCompilation }
func (ReportChunk) Kind() Kind       { return KindReportChunk }
func (Complete) Kind() Kind          { return KindComplete }
func (Error) Kind() Kind             { return KindError }
func (u Unknown) Kind() Kind         { return Kind(u.Type) }

func (Progress) isEvent()          {}
func (QueryGenerating) isEvent()   {}
func (QueryGenerated) isEvent()    {}
func (ResearchInit) isEvent()      {}
func (CrawlStart) isEvent()        {}
func (Curation) isEvent()          {}
func (Enrichment) isEvent()        {}
func (BriefingStart) isEvent()     {}
func (BriefingComplete) isEvent()  {}
func (ReportCompilation) isEvent() {}
func (ReportChunk) isEvent()       {}
func (Complete) isEvent()          {}
func (Error) isEvent()             {}
func (Unknown) isEvent()           {}

// StepOf returns the step identifier an event carries, if any.
func StepOf(ev Event) string {
	switch typed := ev.(type) {
	case Progress:
		return typed.Step
	case ResearchInit:
		return typed.Step
	case CrawlStart:
		return typed.Step
	case BriefingStart:
		return typed.Step
	case BriefingComplete:
		return typed.Step
	case ReportChunk:
		return typed.Step
	case Error:
		return typed.Step
	case Unknown:
		return typed.Step
	default:
		return ""
	}
}

// IsTerminal reports whether no further events are processed after ev.
func IsTerminal(ev Event) bool {
	switch ev.(type) {
	case Complete, Error:
		return true
	default:
		return false
	}
}
