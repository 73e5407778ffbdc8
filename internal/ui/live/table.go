package live

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"dossier/internal/progress"
)

const barWidth = 20

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	styles.Selected = lipgloss.NewStyle()
	return styles
}

// defaultColumns returns the enrichment table columns.
func defaultColumns() []table.Column {
	return []table.Column{
		{Title: "Category", Width: 12},
		{Title: "Enriched", Width: 10},
		{Title: "Progress", Width: barWidth + 2},
	}
}

// rowsForState converts enrichment counters into table rows.
func rowsForState(state progress.State) []table.Row {
	categories := state.EnrichmentCategories()
	rows := make([]table.Row, 0, len(categories))
	for _, category := range categories {
		counter := state.Enrichment[category]
		rows = append(rows, table.Row{
			category,
			formatCounter(counter),
			progressBar(counter, barWidth),
		})
	}
	return rows
}
