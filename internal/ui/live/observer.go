package live

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"dossier/internal/policy"
	"dossier/internal/progress"
)

// Controller runs the live UI and implements session.Observer.
type Controller struct {
	inbox   *mailbox
	program *tea.Program
	done    chan struct{}
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	controller := &Controller{inbox: newMailbox(), done: make(chan struct{})}
	events := make(chan Event)
	model := NewModel(events, opts)
	controller.program = tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	go controller.pump(events)
	go func() {
		_, _ = controller.program.Run()
		close(controller.done)
	}()
	return controller
}

// pump hands queued events to the program one at a time and closes events
// once the controller is closed and every queued event was delivered.
func (c *Controller) pump(events chan<- Event) {
	for {
		event, ok := c.inbox.next(c.done)
		if !ok {
			close(events)
			return
		}
		select {
		case events <- event:
		case <-c.done:
			return
		}
	}
}

// Close signals the UI to stop after the queued events are shown.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.inbox.close()
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// OnJobStart resets the UI for a new job.
func (c *Controller) OnJobStart(jobID, company string) {
	c.send(Event{Kind: EventJobStart, JobID: jobID, Company: company})
}

// OnSnapshot forwards progress to the UI.
func (c *Controller) OnSnapshot(state progress.State) {
	c.send(Event{Kind: EventSnapshot, Snapshot: state})
}

// OnAction forwards scroll and collapse actions to the UI.
func (c *Controller) OnAction(action policy.Action) {
	c.send(Event{Kind: EventAction, Action: action})
}

// OnNotice shows a one-line message in the footer.
func (c *Controller) OnNotice(message string) {
	c.send(Event{Kind: EventNotice, Notice: message})
}

// OnJobEnd marks the stream as finished. The UI stays open until the user quits.
func (c *Controller) OnJobEnd(err error) {
	c.send(Event{Kind: EventJobEnd, Err: err})
}

// send enqueues an event without blocking the caller.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.inbox.push(event)
}
