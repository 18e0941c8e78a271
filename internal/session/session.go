// Package session ties one live browser, one action log and one screenshot
// sink together behind the operations the console exposes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v0xg/stepforge/internal/action"
	"github.com/v0xg/stepforge/internal/executor"
	"github.com/v0xg/stepforge/internal/history"
	"github.com/v0xg/stepforge/internal/screenshot"
)

// ErrAlreadyRunning is returned by Start when a browser is already live
var ErrAlreadyRunning = errors.New("session already running")

// Browser is what a session needs from its live browser
type Browser interface {
	executor.Driver
	Screenshot(ctx context.Context) ([]byte, error)
	Close()
}

// Launcher starts a browser. browser.Launch is the production launcher.
type Launcher func(ctx context.Context) (Browser, error)

// Options configures a session
type Options struct {
	Recording   bool // append successful actions to the log
	Screenshots bool // capture the page after each successful action
	Clock       func() time.Time
}

// Step is the result of one successful execution
type Step struct {
	Action   action.Action
	Outcome  executor.Outcome
	Recorded bool
}

// Session owns the live browser handle, the action log, the screenshot
// sink and the recording flag. Calls are serialised; there is never more
// than one action in flight.
type Session struct {
	ID string

	mu        sync.Mutex
	logger    *zap.Logger
	launch    Launcher
	exec      *executor.Executor
	browser   Browser
	log       *history.Log
	shots     *screenshot.Sink
	recording bool
	capture   bool
	clock     func() time.Time
}

// New creates a stopped session
func New(logger *zap.Logger, launch Launcher, exec *executor.Executor, opts Options) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	id := uuid.NewString()
	return &Session{
		ID:        id,
		logger:    logger.Named("session").With(zap.String("session_id", id)),
		launch:    launch,
		exec:      exec,
		log:       history.NewLog(),
		shots:     screenshot.NewSink(),
		recording: opts.Recording,
		capture:   opts.Screenshots,
		clock:     opts.Clock,
	}
}

// Start launches the browser. History is kept across restarts.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		return ErrAlreadyRunning
	}
	b, err := s.launch(ctx)
	if err != nil {
		if !errors.Is(err, action.ErrSessionStart) {
			err = fmt.Errorf("%w: %v", action.ErrSessionStart, err)
		}
		return err
	}
	s.browser = b
	s.logger.Info("Session started.")
	return nil
}

// Stop quits the browser
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser == nil {
		return fmt.Errorf("%w: no active browser session", action.ErrSessionUnavailable)
	}
	s.browser.Close()
	s.browser = nil
	s.logger.Info("Session stopped.", zap.Int("recorded_actions", s.log.Len()))
	return nil
}

// Running reports whether a browser is live
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browser != nil
}

// Execute performs req. Only a fully successful execution is captured as
// an action, and only while recording is on.
func (s *Session) Execute(ctx context.Context, req action.Request) (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execute(ctx, req)
}

func (s *Session) execute(ctx context.Context, req action.Request) (Step, error) {
	var d executor.Driver
	if s.browser != nil {
		d = s.browser
	}
	out, err := s.exec.Execute(ctx, d, req)
	if err != nil {
		s.logger.Warn("Action failed.", zap.Stringer("request", req), zap.Error(err))
		return Step{}, err
	}

	now := s.clock()
	step := Step{Action: action.Capture(req, out.Result, now), Outcome: out}
	if s.recording {
		s.log.Append(step.Action)
		step.Recorded = true
	}
	if s.capture {
		s.screenshot(ctx, req.Kind, now, out.Pointer)
	}
	return step, nil
}

func (s *Session) screenshot(ctx context.Context, kind action.Kind, at time.Time, p *executor.Pointer) {
	png, err := s.browser.Screenshot(ctx)
	if err != nil {
		s.logger.Warn("Screenshot failed.", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	s.shots.Add(screenshot.Shot{
		Timestamp: at.Format(action.TimestampLayout),
		Kind:      kind,
		PNG:       png,
		Pointer:   p,
	})
}

// Navigate is Execute for a navigate request
func (s *Session) Navigate(ctx context.Context, url string, waitSeconds int) (Step, error) {
	return s.Execute(ctx, action.NewNavigate(url, waitSeconds))
}

// ReplayStep is the outcome of one replayed action
type ReplayStep struct {
	Index   int // 1-based
	Request action.Request
	Step    Step
	Err     error
}

// Replay executes saved actions in order. It stops at the first failure
// unless keepGoing is set. Replayed actions are recorded like any other.
func (s *Session) Replay(ctx context.Context, actions []action.Action, keepGoing bool) ([]ReplayStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		report []ReplayStep
		failed error
	)
	for i, a := range actions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		req := a.Request()
		step, err := s.execute(ctx, req)
		report = append(report, ReplayStep{Index: i + 1, Request: req, Step: step, Err: err})
		if err == nil {
			continue
		}
		if failed == nil {
			failed = fmt.Errorf("step %d (%s): %w", i+1, a.Kind, err)
		}
		if !keepGoing || errors.Is(err, action.ErrSessionUnavailable) {
			break
		}
	}
	return report, failed
}

// History returns the recorded actions in order
func (s *Session) History() []action.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.List()
}

// ClearHistory discards the action log and the screenshots
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Clear()
	s.shots.Clear()
}

// SetRecording switches capture of successful actions on or off
func (s *Session) SetRecording(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = on
}

// Recording reports whether successful actions are appended to the log
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Shots returns the captured screenshots in order
func (s *Session) Shots() []screenshot.Shot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shots.List()
}

// Browser returns the live browser, or nil when stopped
func (s *Session) Browser() Browser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browser
}

// WriteShots saves the screenshots as numbered PNG files in dir
func (s *Session) WriteShots(dir, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shots.WriteFiles(dir, prefix)
}
