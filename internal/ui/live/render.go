package live

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"dossier/internal/progress"
)

// renderHeader renders the job header line.
func renderHeader(state State, now time.Time, spinner string, noColor bool) string {
	line := "Research"
	if state.Company != "" {
		line += " " + state.Company
	}
	if state.JobID != "" {
		line += " | Job " + state.JobID
	}
	line += " | " + formatPhase(state.Progress.Phase)
	if elapsed := formatElapsed(state, now); elapsed != "" {
		line += " | Elapsed: " + elapsed
	}
	if !state.Done && !state.Progress.Terminal && spinner != "" {
		line = spinner + " " + line
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderStatus renders the current step and message.
func renderStatus(state progress.State, noColor bool) string {
	status := state.Status
	if status.Step == "" && status.Message == "" {
		return stylize("Waiting for the first update...", noColor, lipgloss.Color("242"))
	}
	line := status.Message
	if status.Step != "" {
		line = status.Step + ": " + status.Message
	}
	return stylize(line, noColor, lipgloss.Color("252"))
}

// renderSection renders a titled section, or its summary when collapsed.
func renderSection(title, summary, body string, collapsed bool, noColor bool) string {
	if collapsed || body == "" {
		return stylize("▸ "+title, noColor, lipgloss.Color("244")) + "  " + summary
	}
	return stylize("▾ "+title, noColor, lipgloss.Color("244")) + "  " + summary + "\n" + body
}

// renderQueries lists finalized queries in completion order, then streaming ones.
func renderQueries(state progress.State, width int) string {
	lines := make([]string, 0, len(state.Queries)+len(state.StreamingQueries))
	for _, query := range state.Queries {
		lines = append(lines, "  "+formatQuery(query, width-2))
	}
	for _, query := range state.Streaming() {
		lines = append(lines, "  "+formatQuery(query, width-2))
	}
	return strings.Join(lines, "\n")
}

// renderBriefings renders the briefing checklist.
func renderBriefings(state progress.State) string {
	lines := make([]string, 0, len(progress.BriefingCategories))
	for _, category := range progress.BriefingCategories {
		lines = append(lines, "  "+formatBriefing(category, state.Briefings[category]))
	}
	return strings.Join(lines, "\n")
}

// renderError renders the job error, if any.
func renderError(state State, noColor bool) string {
	message := state.Progress.Error
	if message == "" {
		message = state.Err
	}
	if message == "" {
		return ""
	}
	return stylize("Error: "+message, noColor, lipgloss.Color("196"))
}

// renderFooter renders notices and key help.
func renderFooter(state State, noColor bool) string {
	help := "q quit | r abandon job | 1 queries | 2 enrichment | 3 briefings | ↑/↓ scroll"
	if len(state.Notices) == 0 {
		return stylize(help, noColor, lipgloss.Color("240"))
	}
	notice := state.Notices[len(state.Notices)-1]
	return stylize(notice, noColor, lipgloss.Color("244")) + "\n" + stylize(help, noColor, lipgloss.Color("240"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
