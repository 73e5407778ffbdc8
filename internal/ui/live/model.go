package live

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"dossier/internal/phase"
)

const (
	headerHeight = 1
	footerHeight = 2
	defaultWidth = 100
)

// Model renders a live console UI using Bubble Tea.
type Model struct {
	state        State
	table        table.Model
	viewport     viewport.Model
	spinner      spinner.Model
	renderer     *glamour.TermRenderer
	events       <-chan Event
	tickInterval time.Duration
	now          time.Time
	noColor      bool
	width        int
	onReset      func()

	reportSource   string
	reportRendered string
}

// Options configures the live UI model.
type Options struct {
	NoColor      bool
	TickInterval time.Duration
	// OnReset abandons the running job. It is invoked off the UI goroutine.
	OnReset func()
}

// NewModel constructs a live UI model for an event stream.
func NewModel(events <-chan Event, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = 200 * time.Millisecond
	}
	t := table.New(
		table.WithColumns(defaultColumns()),
		table.WithRows([]table.Row{}),
		table.WithFocused(false),
		table.WithHeight(5),
	)
	t.SetStyles(tableStyles(opts.NoColor))
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if !opts.NoColor {
		sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	}
	now := time.Now()
	m := Model{
		state:        NewState("", "", now),
		table:        t,
		viewport:     viewport.New(defaultWidth, 20),
		spinner:      sp,
		events:       events,
		tickInterval: tickInterval,
		now:          now,
		noColor:      opts.NoColor,
		width:        defaultWidth,
		onReset:      opts.OnReset,
	}
	m.renderer = newRenderer(m.width, opts.NoColor)
	m.viewport.SetContent(m.body())
	return m
}

// State returns the current UI state.
func (m Model) State() State {
	return m.state
}

// Init starts ticking and waits for the first event.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tick(m.tickInterval), m.spinner.Tick)
}

// Update consumes UI events, keys and timer ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(typed.Width, 20)
		m.viewport.Width = m.width
		m.viewport.Height = max(typed.Height-headerHeight-footerHeight, 1)
		m.renderer = newRenderer(m.width, m.noColor)
		m.reportSource = ""
		m = m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch typed.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "1":
			m.state = Toggle(m.state, SectionQueries)
			return m.refresh(), nil
		case "2":
			m.state = Toggle(m.state, SectionEnrichment)
			return m.refresh(), nil
		case "3":
			m.state = Toggle(m.state, SectionBriefings)
			return m.refresh(), nil
		case "r":
			return m, m.reset()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case EventMsg:
		m = applyEvent(m, typed.Event)
		return m, waitForEvent(m.events)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tickMsg:
		m.now = time.Time(typed)
		return m, tick(m.tickInterval)
	}
	return m, nil
}

// View renders the live UI.
func (m Model) View() string {
	header := renderHeader(m.state, m.now, m.spinner.View(), m.noColor)
	footer := renderFooter(m.state, m.noColor)
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}

// EventMsg wraps a UI event for Bubble Tea.
type EventMsg struct {
	Event Event
}

// reset asks the owner to abandon the job while it is still streaming.
func (m Model) reset() tea.Cmd {
	if m.onReset == nil || m.state.Done {
		return nil
	}
	onReset := m.onReset
	return func() tea.Msg {
		onReset()
		return nil
	}
}

// tickMsg carries a clock tick for updates.
type tickMsg time.Time

// waitForEvent blocks until a UI event is available.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		event, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return EventMsg{Event: event}
	}
}

// tick emits a periodic tick message.
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// applyEvent folds a UI event into the model.
func applyEvent(model Model, event Event) Model {
	model.state = Reduce(model.state, event, time.Now())
	if event.Kind == EventJobStart {
		model.reportSource = ""
		model.reportRendered = ""
		model.viewport.GotoTop()
	}
	model.table.SetRows(rowsForState(model.state.Progress))
	model = model.refresh()
	if model.state.ScrollToStatus {
		model.viewport.GotoTop()
		model.state.ScrollToStatus = false
	}
	return model
}

// refresh re-renders the scrollable body.
func (m Model) refresh() Model {
	m = m.renderReport()
	m.viewport.SetContent(m.body())
	return m
}

// renderReport renders the report markdown when it changed.
func (m Model) renderReport() Model {
	source := m.state.Progress.Report
	if source == m.reportSource {
		return m
	}
	m.reportSource = source
	m.reportRendered = source
	if source == "" || m.renderer == nil {
		return m
	}
	if rendered, err := m.renderer.Render(source); err == nil {
		m.reportRendered = strings.TrimRight(rendered, "\n")
	}
	return m
}

// body assembles the scrollable content with the status panel first.
func (m Model) body() string {
	progressState := m.state.Progress
	parts := []string{renderStatus(progressState, m.noColor)}
	if errLine := renderError(m.state, m.noColor); errLine != "" {
		parts = append(parts, errLine)
	}
	if len(progressState.Queries) > 0 || len(progressState.StreamingQueries) > 0 {
		parts = append(parts, renderSection("Queries", formatQueriesSummary(progressState),
			renderQueries(progressState, m.width), m.state.Collapsed[SectionQueries], m.noColor))
	}
	if len(progressState.Enrichment) > 0 {
		parts = append(parts, renderSection("Enrichment", formatEnrichmentSummary(progressState),
			m.table.View(), m.state.Collapsed[SectionEnrichment], m.noColor))
	}
	if progressState.BriefingsDone() > 0 || progressState.Phase.AtLeast(phase.Briefing) {
		parts = append(parts, renderSection("Briefings", formatBriefingsSummary(progressState),
			renderBriefings(progressState), m.state.Collapsed[SectionBriefings], m.noColor))
	}
	if m.reportRendered != "" {
		title := "Report"
		if progressState.ReportStreaming {
			title += " (streaming)"
		}
		parts = append(parts, stylize(title, m.noColor, lipgloss.Color("33"))+"\n"+m.reportRendered)
	}
	return strings.Join(parts, "\n\n")
}

func newRenderer(width int, noColor bool) *glamour.TermRenderer {
	style := glamour.WithAutoStyle()
	if noColor {
		style = glamour.WithStandardStyle("notty")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(max(width-4, 20)))
	if err != nil {
		return nil
	}
	return renderer
}
