package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"dossier/internal/event"
)

// ErrNoJobID is returned when a stream is requested without a job id.
var ErrNoJobID = errors.New("stream: job id is required")

// ErrConnectionLost is reported when the transport ends before a terminal event.
var ErrConnectionLost = errors.New("connection lost or server error")

// State is the lifecycle state of the managed connection.
type State int

const (
	Idle State = iota
	Connecting
	Streaming
	Terminal
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Delivery is one item read from a stream handle. Exactly one of Event, Err
// or Closed is set.
type Delivery struct {
	Generation uint64
	JobID      string
	Event      event.Event
	Err        error
	Closed     bool
}

// Options configures a Manager.
type Options struct {
	Logger *zap.Logger
	// Buffer is the capacity of the delivery channel.
	Buffer int
}

type handle struct {
	generation uint64
	jobID      string
	cancel     context.CancelFunc
	body       io.ReadCloser
	done       chan struct{}
}

// Manager owns the single live stream handle. Opening a new stream always
// closes the previous handle, and waits for its reader to stop, before the
// new one is opened. Deliveries from any handle other than the current one
// are rejected by Accept.
type Manager struct {
	opener     Opener
	decoder    *event.Decoder
	logger     *zap.Logger
	deliveries chan Delivery

	mu         sync.Mutex
	state      State
	generation uint64
	current    *handle
	jobID      string
}

// NewManager builds an idle manager.
func NewManager(opener Opener, decoder *event.Decoder, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = 64
	}
	return &Manager{
		opener:     opener,
		decoder:    decoder,
		logger:     logger,
		deliveries: make(chan Delivery, buffer),
	}
}

// Deliveries is the channel every handle reports into.
func (m *Manager) Deliveries() <-chan Delivery {
	return m.deliveries
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// JobID returns the job of the current or last handle.
func (m *Manager) JobID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobID
}

// Generation identifies the current handle.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Open supersedes any current handle with a stream for jobID.
func (m *Manager) Open(ctx context.Context, jobID string) error {
	if jobID == "" {
		return ErrNoJobID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
	m.generation++
	m.jobID = jobID
	m.state = Connecting

	streamCtx, cancel := context.WithCancel(ctx)
	body, err := m.opener.Open(streamCtx, jobID)
	if err != nil {
		cancel()
		m.state = Terminal
		m.logger.Warn("stream open failed", zap.String("job_id", jobID), zap.Error(err))
		return err
	}
	h := &handle{
		generation: m.generation,
		jobID:      jobID,
		cancel:     cancel,
		body:       body,
		done:       make(chan struct{}),
	}
	m.current = h
	m.logger.Debug("stream opened", zap.String("job_id", jobID), zap.Uint64("generation", h.generation))
	go m.pump(streamCtx, h)
	return nil
}

// Accept reports whether a delivery belongs to the current handle and
// advances the lifecycle. Terminal events and transport failures close the
// handle.
func (m *Manager) Accept(d Delivery) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || d.Generation != m.current.generation || m.state == Terminal {
		m.logger.Debug("dropping stale delivery",
			zap.String("job_id", d.JobID),
			zap.Uint64("generation", d.Generation))
		return false
	}
	switch {
	case d.Event != nil:
		m.state = Streaming
		if event.IsTerminal(d.Event) {
			m.state = Terminal
			m.closeLocked()
		}
	case d.Err != nil, d.Closed:
		m.state = Terminal
		m.logger.Warn("stream ended without terminal event", zap.String("job_id", d.JobID), zap.Error(d.Err))
		m.closeLocked()
	}
	return true
}

// Reset closes any open handle and returns to idle. It is safe to call on an
// idle manager.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
	m.state = Idle
	m.jobID = ""
}

// Close releases the connection for process shutdown.
func (m *Manager) Close() {
	m.Reset()
}

// closeLocked cancels the current handle and waits for its reader to exit.
func (m *Manager) closeLocked() {
	h := m.current
	if h == nil {
		return
	}
	m.current = nil
	h.cancel()
	_ = h.body.Close()
	<-h.done
	m.logger.Debug("stream closed", zap.String("job_id", h.jobID), zap.Uint64("generation", h.generation))
}

// pump decodes frames from a handle into the delivery channel.
func (m *Manager) pump(ctx context.Context, h *handle) {
	defer close(h.done)
	err := ReadFrames(h.body, func(data []byte) bool {
		ev, err := m.decoder.Decode(data)
		if err != nil {
			m.logger.Warn("skipping malformed stream event", zap.String("job_id", h.jobID), zap.Error(err))
			return true
		}
		return m.send(ctx, Delivery{Generation: h.generation, JobID: h.jobID, Event: ev})
	})
	if ctx.Err() != nil {
		return
	}
	end := Delivery{Generation: h.generation, JobID: h.jobID, Closed: true}
	if err != nil {
		end = Delivery{Generation: h.generation, JobID: h.jobID, Err: fmt.Errorf("%w: %v", ErrConnectionLost, err)}
	}
	m.send(ctx, end)
}

func (m *Manager) send(ctx context.Context, d Delivery) bool {
	select {
	case m.deliveries <- d:
		return true
	case <-ctx.Done():
		return false
	}
}
