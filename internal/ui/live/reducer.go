package live

import (
	"maps"
	"time"

	"dossier/internal/policy"
)

const maxNotices = 3

// Reduce applies a UI event to the state.
func Reduce(state State, event Event, now time.Time) State {
	switch event.Kind {
	case EventJobStart:
		return NewState(event.JobID, event.Company, now)
	case EventSnapshot:
		state.Progress = event.Snapshot
		if state.Company == "" {
			state.Company = event.Snapshot.Company
		}
		if event.Snapshot.Terminal && state.EndedAt.IsZero() {
			state.EndedAt = now
		}
	case EventAction:
		state = applyAction(state, event.Action)
	case EventNotice:
		state = addNotice(state, event.Notice)
	case EventJobEnd:
		state.Done = true
		if state.EndedAt.IsZero() {
			state.EndedAt = now
		}
		if event.Err != nil {
			state.Err = event.Err.Error()
		}
	}
	return state
}

// applyAction folds a policy action into the view state.
func applyAction(state State, action policy.Action) State {
	switch action {
	case policy.ScrollToStatus:
		state.ScrollToStatus = true
	case policy.CollapseQueries:
		state = setCollapsed(state, SectionQueries, true)
	case policy.CollapseEnrichment:
		state = setCollapsed(state, SectionEnrichment, true)
	case policy.CollapseBriefings:
		state = setCollapsed(state, SectionBriefings, true)
	}
	return state
}

// Toggle flips a section between collapsed and expanded.
func Toggle(state State, section Section) State {
	return setCollapsed(state, section, !state.Collapsed[section])
}

func setCollapsed(state State, section Section, collapsed bool) State {
	next := maps.Clone(state.Collapsed)
	if next == nil {
		next = map[Section]bool{}
	}
	next[section] = collapsed
	state.Collapsed = next
	return state
}

func addNotice(state State, notice string) State {
	if notice == "" {
		return state
	}
	notices := append(append([]string(nil), state.Notices...), notice)
	if len(notices) > maxNotices {
		notices = notices[len(notices)-maxNotices:]
	}
	state.Notices = notices
	return state
}
