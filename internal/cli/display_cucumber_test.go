//go:build cucumber

package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"dossier/internal/config"
	"dossier/internal/event"
	"dossier/internal/policy"
	"dossier/internal/progress"
	"dossier/internal/testutil"
	"dossier/internal/ui/live"
)

// TestLiveUIScenarios runs the live UI feature scenarios.
func TestLiveUIScenarios(t *testing.T) {
	featurePath := filepath.Join("..", "..", "features", "live-ui.feature")
	suite := godog.TestSuite{
		Name:                "live-ui",
		ScenarioInitializer: InitializeLiveUIScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{featurePath},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeLiveUIScenario wires steps for live UI scenarios.
func InitializeLiveUIScenario(ctx *godog.ScenarioContext) {
	state := &liveUIScenarioState{}
	orig := isTerminal
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		isTerminal = func(io.Writer) bool { return state.isTTY }
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		isTerminal = orig
		return ctx, nil
	})

	ctx.Step(`^a TTY stdout$`, state.givenTTY)
	ctx.Step(`^stdout is not a TTY$`, state.givenNonTTY)
	ctx.Step(`^a job that has finished enrichment for (\d+) categories$`, state.givenEnrichedJob)
	ctx.Step(`^I run "([^"]+)"$`, state.whenIRun)
	ctx.Step(`^the collapse actions arrive$`, state.whenCollapseActionsArrive)
	ctx.Step(`^a live UI is shown$`, state.thenLiveUIShown)
	ctx.Step(`^the output uses plain summary text$`, state.thenPlainOutput)
	ctx.Step(`^the UI shows the enrichment section collapsed$`, state.thenEnrichmentCollapsed)
	ctx.Step(`^the UI requests a scroll to the status$`, state.thenScrollRequested)
}

type liveUIScenarioState struct {
	isTTY    bool
	decision displayMode
	uiState  live.State
	actions  []policy.Action
}

// reset clears scenario state.
func (s *liveUIScenarioState) reset() {
	s.isTTY = false
	s.decision = displayMode{}
	s.uiState = live.NewState("job-1", "Acme", time.Now())
	s.actions = nil
}

// givenTTY marks stdout as a TTY.
func (s *liveUIScenarioState) givenTTY() error {
	s.isTTY = true
	return nil
}

// givenNonTTY marks stdout as non-TTY.
func (s *liveUIScenarioState) givenNonTTY() error {
	s.isTTY = false
	return nil
}

// givenEnrichedJob feeds the snapshot and policy with a finished enrichment.
func (s *liveUIScenarioState) givenEnrichedJob(count int) error {
	clock := testutil.NewFakeClock(time.Now())
	p := policy.New(func(action policy.Action) {
		s.actions = append(s.actions, action)
	}, policy.Options{Scheduler: clock})
	snapshot := progress.New()
	feed := func(ev event.Event) {
		var outcome progress.Outcome
		snapshot, outcome = progress.Reduce(snapshot, ev)
		if outcome.Applied {
			p.Observe(ev.Kind(), outcome.AllBriefingsComplete)
		}
	}
	for i := 0; i < count; i++ {
		total := 2
		category := fmt.Sprintf("category-%d", i)
		feed(event.Curation{Category: category, Total: &total})
		feed(event.Enrichment{Category: category, Enriched: &total, Total: &total})
	}
	feed(event.BriefingStart{Category: "company", Step: "briefing"})
	s.uiState = live.Reduce(s.uiState, live.Event{Kind: live.EventSnapshot, Snapshot: snapshot}, time.Now())
	clock.Advance(time.Minute)
	return nil
}

// whenIRun evaluates the UI mode decision for the scenario.
func (s *liveUIScenarioState) whenIRun(_ string) error {
	decision, err := chooseDisplay(config.Default(), "", false, nil)
	if err != nil {
		return err
	}
	s.decision = decision
	return nil
}

// whenCollapseActionsArrive applies the queued policy actions.
func (s *liveUIScenarioState) whenCollapseActionsArrive() error {
	for _, action := range s.actions {
		s.uiState = live.Reduce(s.uiState, live.Event{Kind: live.EventAction, Action: action}, time.Now())
	}
	return nil
}

// thenLiveUIShown asserts the live UI is enabled.
func (s *liveUIScenarioState) thenLiveUIShown() error {
	if !s.decision.live {
		return fmt.Errorf("expected live UI to be enabled")
	}
	return nil
}

// thenPlainOutput asserts the live UI is disabled.
func (s *liveUIScenarioState) thenPlainOutput() error {
	if s.decision.live {
		return fmt.Errorf("expected plain output")
	}
	return nil
}

// thenEnrichmentCollapsed asserts the enrichment section is collapsed.
func (s *liveUIScenarioState) thenEnrichmentCollapsed() error {
	if !s.uiState.Collapsed[live.SectionEnrichment] {
		return fmt.Errorf("expected enrichment collapsed, actions %v", s.actions)
	}
	return nil
}

// thenScrollRequested asserts a scroll request reached the UI.
func (s *liveUIScenarioState) thenScrollRequested() error {
	if !s.uiState.ScrollToStatus {
		return fmt.Errorf("expected scroll to status, actions %v", s.actions)
	}
	return nil
}
