// Package autosave coalesces bursts of edit events into a single commit.
//
// A Scheduler is a two-state machine:
//
//	Idle    --OnEdit-->            Pending (timer armed)
//	Pending --OnEdit-->            Pending (timer re-armed)
//	Pending --fire/Flush/FlushNow/Stop--> Idle
//
// Every arm bumps a generation counter; a commit only runs if its generation
// is still current, so a timer that fired concurrently with FlushNow cannot
// commit stale fields after the manual save.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the quiet period after the last edit before committing.
const DefaultInterval = 250 * time.Millisecond

// State of the scheduler.
type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Saver commits editor fields. *core.Store implements it.
type Saver interface {
	SaveActiveContent(ctx context.Context, title, content string) (bool, error)
}

// Fields returns the current editor values at commit time.
type Fields func() (title, content string)

// Timer is the subset of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc arms a timer calling f after d. time.AfterFunc satisfies it
// once wrapped; tests substitute a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

// Dispatch runs a commit. The default runs it on the timer goroutine;
// single-threaded UIs hand it over to their own event loop instead.
type Dispatch func(commit func())

// Scheduler debounces edits into SaveActiveContent calls.
type Scheduler struct {
	mu       sync.Mutex
	saver    Saver
	fields   Fields
	interval time.Duration
	after    AfterFunc
	dispatch Dispatch
	onCommit func(saved bool, err error)
	logger   *slog.Logger

	state   State
	timer   Timer
	gen     uint64
	stopped bool
	commits int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the quiet period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAfterFunc replaces the timer source.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.after = fn
		}
	}
}

// WithDispatch sets where timer-driven commits run. FlushNow always commits
// on the calling goroutine.
func WithDispatch(fn Dispatch) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.dispatch = fn
		}
	}
}

// WithOnCommit registers a hook called after every commit attempt.
func WithOnCommit(fn func(saved bool, err error)) Option {
	return func(s *Scheduler) {
		s.onCommit = fn
	}
}

// New creates an idle Scheduler.
func New(saver Saver, fields Fields, opts ...Option) *Scheduler {
	s := &Scheduler{
		saver:    saver,
		fields:   fields,
		interval: DefaultInterval,
		after: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		dispatch: func(commit func()) { commit() },
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnEdit cancels any pending commit and arms a new one.
func (s *Scheduler) OnEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked()
	s.gen++
	gen := s.gen
	s.state = Pending
	s.timer = s.after(s.interval, func() {
		s.dispatch(func() { s.fire(gen) })
	})
}

// FlushNow commits immediately and cancels any pending commit.
func (s *Scheduler) FlushNow() {
	s.mu.Lock()
	s.cancelLocked()
	s.gen++
	s.state = Idle
	s.mu.Unlock()

	s.commit("flush")
}

// Flush commits only if an edit is pending and reports whether it did.
// Use it before switching notes; FlushNow is for an explicit save.
func (s *Scheduler) Flush() bool {
	s.mu.Lock()
	if s.state != Pending {
		s.mu.Unlock()
		return false
	}
	s.cancelLocked()
	s.gen++
	s.state = Idle
	s.mu.Unlock()

	s.commit("flush")
	return true
}

// Stop cancels any pending commit. Later edits are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.gen++
	s.state = Idle
	s.stopped = true
}

// State returns Idle or Pending.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Commits returns how many commits ran.
func (s *Scheduler) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Interval returns the quiet period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != Pending {
		s.mu.Unlock()
		s.logger.Debug("autosave skipped, superseded", "generation", gen)
		return
	}
	s.state = Idle
	s.timer = nil
	s.mu.Unlock()

	s.commit("timer")
}

func (s *Scheduler) commit(trigger string) {
	title, content := s.fields()
	saved, err := s.saver.SaveActiveContent(context.Background(), title, content)

	s.mu.Lock()
	s.commits++
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("autosave failed", "trigger", trigger, "error", err)
	} else {
		s.logger.Debug("autosave committed", "trigger", trigger, "saved", saved)
	}
	if s.onCommit != nil {
		s.onCommit(saved, err)
	}
}

func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
