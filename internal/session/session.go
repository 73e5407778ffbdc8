package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"dossier/internal/event"
	"dossier/internal/policy"
	"dossier/internal/progress"
	"dossier/internal/stream"
	"dossier/internal/submit"
)

// ConnectionLostMessage is the error shown when the stream ends early.
const ConnectionLostMessage = "Connection lost or server error"

// Journal statuses reported to a Recorder.
const (
	recordCompleted = "completed"
	recordFailed    = "failed"
	recordAbandoned = "abandoned"
)

// Submitter creates research jobs.
type Submitter interface {
	Submit(ctx context.Context, req submit.Request) (submit.Response, error)
}

// Recorder receives every applied event. Failures are logged and ignored.
type Recorder interface {
	StartJob(ctx context.Context, jobID, company string) error
	Record(ctx context.Context, jobID string, seq int, ev event.Event) error
	FinishJob(ctx context.Context, jobID, status string) error
}

// Options configures a Session.
type Options struct {
	Logger   *zap.Logger
	Recorder Recorder
	Policy   policy.Options
	// ActionBuffer is the capacity of the Actions channel.
	ActionBuffer int
}

// Session owns the progress state of one job at a time. Deliveries must be
// passed to Handle from a single goroutine; Snapshot may be called from any.
type Session struct {
	submitter Submitter
	manager   *stream.Manager
	policy    *policy.Policy
	recorder  Recorder
	logger    *zap.Logger
	actions   chan policy.Action

	mu      sync.RWMutex
	state   progress.State
	jobID   string
	company string
	seq     int
}

// New builds an idle session.
func New(submitter Submitter, manager *stream.Manager, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	buffer := opts.ActionBuffer
	if buffer <= 0 {
		buffer = 16
	}
	s := &Session{
		submitter: submitter,
		manager:   manager,
		recorder:  opts.Recorder,
		logger:    logger,
		actions:   make(chan policy.Action, buffer),
		state:     progress.New(),
	}
	s.policy = policy.New(s.emit, opts.Policy)
	return s
}

// Actions delivers scroll and collapse actions for the current job.
func (s *Session) Actions() <-chan policy.Action {
	return s.actions
}

// Deliveries is the stream delivery channel to feed into Handle.
func (s *Session) Deliveries() <-chan stream.Delivery {
	return s.manager.Deliveries()
}

// Snapshot returns the current progress state.
func (s *Session) Snapshot() progress.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// JobID returns the job being followed, if any.
func (s *Session) JobID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobID
}

// Company returns the company of the current job.
func (s *Session) Company() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Company != "" {
		return s.state.Company
	}
	return s.company
}

// ConnectionState reports the lifecycle state of the stream.
func (s *Session) ConnectionState() stream.State {
	return s.manager.State()
}

// Submit creates a job and starts following it. A failed submission leaves
// the session as it was.
func (s *Session) Submit(ctx context.Context, req submit.Request) (submit.Response, error) {
	resp, err := s.submitter.Submit(ctx, req)
	if err != nil {
		s.logger.Warn("research submission failed", zap.Error(err))
		return submit.Response{}, err
	}
	if err := s.follow(ctx, resp.JobID, submit.Normalize(req).Company); err != nil {
		return resp, err
	}
	return resp, nil
}

// Watch follows an existing job.
func (s *Session) Watch(ctx context.Context, jobID string) error {
	return s.follow(ctx, jobID, "")
}

func (s *Session) follow(ctx context.Context, jobID, company string) error {
	if jobID == "" {
		return stream.ErrNoJobID
	}
	s.Reset()
	s.mu.Lock()
	s.jobID = jobID
	s.company = company
	s.mu.Unlock()
	s.startRecord(jobID, company)
	if err := s.manager.Open(ctx, jobID); err != nil {
		s.mu.Lock()
		s.state = progress.Fail(s.state, ConnectionLostMessage)
		s.mu.Unlock()
		s.finishRecord(jobID, recordFailed)
		return fmt.Errorf("open stream for job %s: %w", jobID, err)
	}
	s.logger.Info("following research job", zap.String("job_id", jobID))
	return nil
}

// Handle applies one delivery. It reports whether the state changed.
func (s *Session) Handle(d stream.Delivery) bool {
	if !s.manager.Accept(d) {
		return false
	}
	s.mu.Lock()
	var outcome progress.Outcome
	switch {
	case d.Event != nil:
		s.state, outcome = progress.Reduce(s.state, d.Event)
		if outcome.Applied {
			s.seq++
		}
	default:
		s.state = progress.Fail(s.state, ConnectionLostMessage)
		outcome = progress.Outcome{Applied: true, Terminal: true}
	}
	seq := s.seq
	errMessage := s.state.Error
	s.mu.Unlock()

	if !outcome.Applied {
		return false
	}
	if d.Event != nil {
		s.policy.Observe(d.Event.Kind(), outcome.AllBriefingsComplete)
		s.record(d.JobID, seq, d.Event)
	}
	if outcome.Terminal {
		status := recordCompleted
		if errMessage != "" {
			status = recordFailed
			s.logger.Warn("research job failed", zap.String("job_id", d.JobID), zap.String("error", errMessage), zap.Error(d.Err))
		} else {
			s.logger.Info("research job complete", zap.String("job_id", d.JobID))
		}
		s.finishRecord(d.JobID, status)
	}
	return true
}

// Observer receives session updates. Calls are made from the goroutine
// running Run.
type Observer interface {
	OnSnapshot(state progress.State)
	OnAction(action policy.Action)
}

// Run handles deliveries until the job is terminal or ctx is done. Actions
// emitted by the policy are forwarded to obs as they arrive.
func (s *Session) Run(ctx context.Context, obs Observer) error {
	for {
		if s.Snapshot().Terminal {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case action := <-s.actions:
			if obs != nil {
				obs.OnAction(action)
			}
		case d := <-s.manager.Deliveries():
			if s.Handle(d) && obs != nil {
				obs.OnSnapshot(s.Snapshot())
			}
		}
	}
}

// ForwardActions passes late actions, such as collapses scheduled near the
// end of a job, to obs until ctx is done.
func (s *Session) ForwardActions(ctx context.Context, obs Observer) {
	for {
		select {
		case <-ctx.Done():
			return
		case action := <-s.actions:
			obs.OnAction(action)
		}
	}
}

// Reset closes the stream, cancels pending actions and clears progress. It
// is safe to call when idle.
func (s *Session) Reset() {
	s.manager.Reset()
	s.policy.Reset()
	s.drainActions()
	s.mu.Lock()
	jobID := s.jobID
	abandoned := jobID != "" && !s.state.Terminal
	s.state = progress.New()
	s.jobID = ""
	s.company = ""
	s.seq = 0
	s.mu.Unlock()
	if abandoned {
		s.finishRecord(jobID, recordAbandoned)
	}
}

// Close releases the stream for shutdown.
func (s *Session) Close() {
	s.Reset()
}

func (s *Session) emit(action policy.Action) {
	select {
	case s.actions <- action:
	default:
		s.logger.Debug("dropping ui action", zap.Stringer("action", action))
	}
}

func (s *Session) drainActions() {
	for {
		select {
		case <-s.actions:
		default:
			return
		}
	}
}

func (s *Session) startRecord(jobID, company string) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := recordContext()
	defer cancel()
	if err := s.recorder.StartJob(ctx, jobID, company); err != nil {
		s.logger.Warn("journal start failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *Session) record(jobID string, seq int, ev event.Event) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := recordContext()
	defer cancel()
	if err := s.recorder.Record(ctx, jobID, seq, ev); err != nil {
		s.logger.Warn("journal record failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *Session) finishRecord(jobID, status string) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := recordContext()
	defer cancel()
	if err := s.recorder.FinishJob(ctx, jobID, status); err != nil {
		s.logger.Warn("journal finish failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func recordContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// IsSubmitError reports whether err is a rejected submission.
func IsSubmitError(err error) bool {
	var submitErr *submit.SubmitError
	return errors.As(err, &submitErr) || errors.Is(err, submit.ErrCompanyRequired)
}
