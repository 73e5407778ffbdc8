package live

import (
	"strconv"
	"strings"
	"time"

	"dossier/internal/phase"
	"dossier/internal/progress"
)

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// truncate collapses whitespace and shortens text to limit runes.
func truncate(text string, limit int) string {
	normalized := strings.Join(strings.Fields(text), " ")
	runes := []rune(normalized)
	if limit <= 3 || len(runes) <= limit {
		return normalized
	}
	return string(runes[:limit-3]) + "..."
}

// formatElapsed renders how long the job has been running.
func formatElapsed(state State, now time.Time) string {
	if state.StartedAt.IsZero() {
		return ""
	}
	end := now
	if !state.EndedAt.IsZero() {
		end = state.EndedAt
	}
	return formatDuration(end.Sub(state.StartedAt))
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}

// formatPhase names the phase for the header.
func formatPhase(p phase.Phase) string {
	switch p {
	case phase.Search:
		return "Searching"
	case phase.Enrichment:
		return "Enriching"
	case phase.Briefing:
		return "Briefing"
	case phase.Complete:
		return "Complete"
	default:
		return "Waiting"
	}
}

// formatQuery renders a query line.
func formatQuery(query progress.Query, width int) string {
	marker := "…"
	if query.Complete {
		marker = "✓"
	}
	prefix := marker + " " + query.Category + " #" + fmtInt(query.Number) + "  "
	return prefix + truncate(query.Text, max(width-len([]rune(prefix)), 10))
}

// formatCounter renders enriched/total.
func formatCounter(counter progress.Counter) string {
	return fmtInt(counter.Enriched) + "/" + fmtInt(counter.Total)
}

// progressBar renders a fixed-width bar for a counter.
func progressBar(counter progress.Counter, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if counter.Total > 0 {
		filled = min(counter.Enriched*width/counter.Total, width)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatBriefing renders one checklist entry.
func formatBriefing(category string, done bool) string {
	if done {
		return "[x] " + category
	}
	return "[ ] " + category
}

// formatQueriesSummary is shown when the query section is collapsed.
func formatQueriesSummary(state progress.State) string {
	line := fmtInt(len(state.Queries)) + " queries generated"
	if streaming := len(state.StreamingQueries); streaming > 0 {
		line += ", " + fmtInt(streaming) + " in progress"
	}
	return line
}

// formatEnrichmentSummary is shown when the enrichment section is collapsed.
func formatEnrichmentSummary(state progress.State) string {
	enriched, total := 0, 0
	for _, counter := range state.Enrichment {
		enriched += counter.Enriched
		total += counter.Total
	}
	return fmtInt(len(state.Enrichment)) + " categories, " + fmtInt(enriched) + "/" + fmtInt(total) + " documents enriched"
}

// formatBriefingsSummary is shown when the briefing section is collapsed.
func formatBriefingsSummary(state progress.State) string {
	return fmtInt(state.BriefingsDone()) + "/" + fmtInt(len(progress.BriefingCategories)) + " briefings complete"
}
