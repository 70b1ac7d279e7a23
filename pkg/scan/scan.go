// Package scan orchestrates one live text scan: a frame source feeding a
// recognition engine until the first usable text or a cancellation, whichever
// wins.
//
// A Session runs the capture loop on the source's goroutine and delivers
// exactly one terminal Result on its result channel. The candidate and cancel
// paths may race from different goroutines; the first to move the session
// state from Running to Finishing determines the outcome, the loser becomes a
// no-op.
package scan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/readlens/readlens/pkg/frame"
	"github.com/readlens/readlens/pkg/recognize"
)

// Common errors returned by sessions.
var (
	ErrAlreadyStarted = errors.New("scan: session already started")
)

// Status is the kind of terminal result a session produced.
type Status int

const (
	// StatusCompleted means a frame yielded usable text.
	StatusCompleted Status = iota

	// StatusCancelled means the scan was cancelled before any text was
	// found, either by the user, a timeout, or a camera failure.
	StatusCancelled
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the terminal value of a scan session. Exactly one Result is
// produced per session; it is immutable once delivered.
type Result struct {
	// Status says how the session ended.
	Status Status `json:"status"`

	// Text holds the recognized lines joined by newlines.
	// Only set when Status is StatusCompleted.
	Text string `json:"text,omitempty"`
}

// Events groups optional observer callbacks for a session.
// Callbacks fire from the session's internal goroutines; they must be fast
// and must not call back into the session synchronously.
type Events struct {
	// OnStateChange fires on every session state transition.
	OnStateChange func(s State)

	// OnFrame fires for each delivered frame. attempted is false when the
	// frame was dropped without recognition because the session had already
	// left the Running state.
	OnFrame func(attempted bool)

	// OnResult fires once with the terminal result, just before it is
	// delivered on the result channel.
	OnResult func(r Result)
}

// Session is one complete scan run from Begin to a terminal Result.
// A session cannot be reused; create a new one per scan.
type Session struct {
	id     string
	source frame.Source
	engine recognize.Engine
	logger *slog.Logger
	events Events

	timeout time.Duration
	timer   *time.Timer

	state    stateMachine
	ctx      context.Context
	resultCh chan Result
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the structured logger for the session.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithEvents sets the observer callbacks.
func WithEvents(events Events) SessionOption {
	return func(s *Session) {
		s.events = events
	}
}

// WithTimeout bounds the session wall-clock. When it expires before any text
// is found, the session behaves exactly as if Cancel had been called.
// Zero (the default) means unbounded.
func WithTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.timeout = d
	}
}

// NewSession creates a scan session over the given source and engine.
// The session takes no ownership of either; the caller closes them.
func NewSession(source frame.Source, engine recognize.Engine, opts ...SessionOption) *Session {
	s := &Session{
		id:       uuid.NewString(),
		source:   source,
		engine:   engine,
		logger:   slog.Default(),
		resultCh: make(chan Result, 1),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("component", "scan.session", "session_id", s.id)

	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state.Load()
}

// Result returns the channel the terminal result is delivered on.
// The channel receives exactly one value and is then closed.
func (s *Session) Result() <-chan Result {
	return s.resultCh
}

// Begin starts the camera and the recognition loop.
// If the camera cannot be acquired, the session immediately delivers a
// Cancelled result without ever reporting Running, and the acquisition error
// is returned for logging.
func (s *Session) Begin(ctx context.Context) error {
	if !s.state.CompareAndSwap(StateIdle, StateRunning) {
		return ErrAlreadyStarted
	}

	s.ctx = ctx

	// The timer must be armed before the source starts: finish reads it
	// from the capture goroutine, and a source may deliver frames as soon
	// as Start is called.
	if s.timeout > 0 {
		s.timer = time.AfterFunc(s.timeout, func() {
			s.logger.Info("scan timed out", "timeout", s.timeout)
			s.Cancel()
		})
	}

	if err := s.source.Start(ctx, s); err != nil {
		// Unusable hardware is surfaced as a cancellation, not a crash.
		// Running was never reported, so observers see only the
		// finishing/stopped teardown.
		s.logger.Warn("frame source failed to start", "error", err)
		s.finish(Result{Status: StatusCancelled})
		return err
	}

	// Report Running only now that the camera is live. A source that
	// delivered a winning frame from inside Start has already moved on;
	// don't announce a state the session has left.
	if s.state.Load() == StateRunning {
		s.emitState(StateRunning)
	}

	s.logger.Info("scan started", "source", s.source.Name(), "engine", s.engine.Name())

	return nil
}

// HandleFrame implements frame.Handler. It runs on the source's capture
// goroutine: recognition here blocks the next frame read, which is the
// pipeline's backpressure.
func (s *Session) HandleFrame(f frame.Frame) {
	// Short-circuit: no recognition once the session has left Running.
	if s.state.Load() != StateRunning {
		s.emitFrame(false)
		return
	}

	outcome, err := s.engine.Recognize(s.ctx, f.Data)
	if err != nil {
		// A single noisy frame must never abort the scan; the frame
		// stream itself is the retry loop.
		s.logger.Debug("recognition failed, dropping frame", "error", err)
		s.emitFrame(true)
		return
	}

	text, ok := outcome.Candidate()
	s.emitFrame(true)
	if !ok {
		return
	}

	s.finish(Result{Status: StatusCompleted, Text: text})
}

// Cancel requests cancellation. Once Cancel returns, no Completed result will
// ever be delivered for this session; an in-flight recognition may finish but
// its outcome is discarded. Safe to call from any goroutine, any number of
// times.
func (s *Session) Cancel() {
	s.finish(Result{Status: StatusCancelled})
}

// finish resolves the candidate/cancel race. Whichever caller observes
// Running and moves the state to Finishing wins; every other call is a no-op.
// Returns whether this call won.
func (s *Session) finish(res Result) bool {
	if !s.transition(StateRunning, StateFinishing) {
		return false
	}

	if s.timer != nil {
		s.timer.Stop()
	}

	// Teardown happens off the caller's goroutine: finish may be invoked
	// from HandleFrame, and source.Stop waits for the in-flight frame
	// delivery to return.
	go func() {
		if err := s.source.Stop(); err != nil {
			s.logger.Warn("frame source stop failed", "error", err)
		}

		s.logger.Info("scan finished", "status", res.Status.String())

		if s.events.OnResult != nil {
			s.events.OnResult(res)
		}

		s.resultCh <- res
		close(s.resultCh)

		s.setState(StateStopped)
	}()

	return true
}

// transition performs the atomic check-and-set from to next, firing the state
// change event when it succeeds.
func (s *Session) transition(from, next State) bool {
	if !s.state.CompareAndSwap(from, next) {
		return false
	}
	s.emitState(next)
	return true
}

func (s *Session) setState(next State) {
	s.state.Store(next)
	s.emitState(next)
}

func (s *Session) emitState(next State) {
	if s.events.OnStateChange != nil {
		s.events.OnStateChange(next)
	}
}

func (s *Session) emitFrame(attempted bool) {
	if s.events.OnFrame != nil {
		s.events.OnFrame(attempted)
	}
}

// Ensure Session implements frame.Handler.
var _ frame.Handler = (*Session)(nil)
