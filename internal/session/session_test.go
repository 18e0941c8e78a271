package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/v0xg/stepforge/internal/action"
	"github.com/v0xg/stepforge/internal/executor"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// -- fakes --

type fakeElement struct {
	text  string
	typed []string
}

func (e *fakeElement) Click(context.Context) error       { return nil }
func (e *fakeElement) DoubleClick(context.Context) error { return nil }
func (e *fakeElement) RightClick(context.Context) error  { return nil }
func (e *fakeElement) Hover(context.Context) error       { return nil }

func (e *fakeElement) Clear(context.Context) error {
	e.typed = nil
	return nil
}

func (e *fakeElement) SendKeys(_ context.Context, keys string) error {
	e.typed = append(e.typed, keys)
	return nil
}
func (e *fakeElement) Text(context.Context) (string, error) { return e.text, nil }
func (e *fakeElement) Attribute(context.Context, string) (string, bool, error) {
	return "", false, nil
}
func (e *fakeElement) DragTo(context.Context, executor.Element) error { return nil }
func (e *fakeElement) Center(context.Context) (executor.Point, error) {
	return executor.Point{X: 5, Y: 5}, nil
}

type fakeBrowser struct {
	elements map[string]*fakeElement
	visited  []string
	shotErr  error
	closed   bool
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{elements: map[string]*fakeElement{}}
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.visited = append(b.visited, url)
	return nil
}

func (b *fakeBrowser) Find(ctx context.Context, loc action.Locator) (executor.Element, error) {
	if el, ok := b.elements[loc.String()]; ok {
		return el, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *fakeBrowser) Screenshot(context.Context) ([]byte, error) {
	if b.shotErr != nil {
		return nil, b.shotErr
	}
	return []byte("png"), nil
}

func (b *fakeBrowser) Close() { b.closed = true }

// -- helpers --

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, b *fakeBrowser, opts Options) *Session {
	t.Helper()
	opts.Clock = func() time.Time { return fixedNow }
	exec := executor.New(zaptest.NewLogger(t), executor.Options{
		Timeout: 50 * time.Millisecond,
		Sleep:   func(context.Context, time.Duration) error { return nil },
	})
	launch := func(context.Context) (Browser, error) { return b, nil }
	return New(zaptest.NewLogger(t), launch, exec, opts)
}

func locator(t *testing.T, strategy, value string) action.Locator {
	t.Helper()
	loc, err := action.NewLocator(strategy, value)
	require.NoError(t, err)
	return loc
}

// -- tests --

func TestStartStop(t *testing.T) {
	b := newFakeBrowser()
	s := newTestSession(t, b, Options{})
	ctx := context.Background()

	assert.NotEmpty(t, s.ID)
	assert.False(t, s.Running())
	assert.ErrorIs(t, s.Stop(), action.ErrSessionUnavailable)

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.Running())
	assert.ErrorIs(t, s.Start(ctx), ErrAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.True(t, b.closed)
	assert.False(t, s.Running())
}

func TestStartFailure(t *testing.T) {
	exec := executor.New(zaptest.NewLogger(t), executor.Options{})
	s := New(zaptest.NewLogger(t), func(context.Context) (Browser, error) {
		return nil, errors.New("chrome not found")
	}, exec, Options{})

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, action.ErrSessionStart)
	assert.False(t, s.Running())
}

func TestExecuteWithoutSession(t *testing.T) {
	s := newTestSession(t, newFakeBrowser(), Options{Recording: true})
	_, err := s.Execute(context.Background(), action.NewRequest(action.Click, locator(t, "id", "x"), action.Params{}))
	assert.ErrorIs(t, err, action.ErrSessionUnavailable)
	assert.Empty(t, s.History())
}

func TestRecordsOnlySuccesses(t *testing.T) {
	b := newFakeBrowser()
	b.elements["id=q"] = &fakeElement{}
	s := newTestSession(t, b, Options{Recording: true, Screenshots: true})
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	step, err := s.Navigate(ctx, "https://example.com", 1)
	require.NoError(t, err)
	assert.True(t, step.Recorded)
	assert.Equal(t, []string{"https://example.com"}, b.visited)

	step, err = s.Execute(ctx, action.NewRequest(action.SendKeys, locator(t, "id", "q"),
		action.Params{Text: "abc", Keys: []action.SpecialKey{action.KeyEnter}}))
	require.NoError(t, err)
	assert.Equal(t, "abc", step.Action.Result)
	assert.Equal(t, []string{"abc\ue007"}, b.elements["id=q"].typed)

	before := len(s.History())
	_, err = s.Execute(ctx, action.NewRequest(action.Click, locator(t, "id", "missing"), action.Params{}))
	assert.ErrorIs(t, err, action.ErrElementNotFound)
	assert.Len(t, s.History(), before, "failed executions are never logged")

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, action.Navigate, history[0].Kind)
	assert.Equal(t, "2026-10-19 12:00:00", history[1].Timestamp)

	shots := s.Shots()
	require.Len(t, shots, 2)
	assert.Equal(t, action.Navigate, shots[0].Kind)
	assert.Equal(t, action.SendKeys, shots[1].Kind)
	assert.Equal(t, []byte("png"), shots[1].PNG)

	paths, err := s.WriteShots(t.TempDir(), "shot")
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	s.ClearHistory()
	assert.Empty(t, s.History())
	assert.NotNil(t, s.History())
	assert.Empty(t, s.Shots())

	require.NoError(t, s.Stop())
}

func TestRecordingToggle(t *testing.T) {
	b := newFakeBrowser()
	s := newTestSession(t, b, Options{})
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	step, err := s.Navigate(ctx, "https://example.com", 0)
	require.NoError(t, err)
	assert.False(t, step.Recorded)
	assert.Empty(t, s.History())

	s.SetRecording(true)
	assert.True(t, s.Recording())
	_, err = s.Navigate(ctx, "https://example.org", 0)
	require.NoError(t, err)
	assert.Len(t, s.History(), 1)
}

func TestScreenshotFailureDoesNotFailAction(t *testing.T) {
	b := newFakeBrowser()
	b.shotErr = errors.New("capture failed")
	s := newTestSession(t, b, Options{Recording: true, Screenshots: true})
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	_, err := s.Navigate(ctx, "https://example.com", 0)
	require.NoError(t, err)
	assert.Len(t, s.History(), 1)
	assert.Empty(t, s.Shots())
}

func TestHistorySurvivesRestart(t *testing.T) {
	b := newFakeBrowser()
	s := newTestSession(t, b, Options{Recording: true})
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	_, err := s.Navigate(ctx, "https://example.com", 0)
	require.NoError(t, err)
	require.NoError(t, s.Stop())
	require.NoError(t, s.Start(ctx))
	assert.Len(t, s.History(), 1)
}

func TestReplay(t *testing.T) {
	b := newFakeBrowser()
	b.elements["id=go"] = &fakeElement{}
	s := newTestSession(t, b, Options{Recording: true})
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	saved := []action.Action{
		action.Capture(action.NewNavigate("https://example.com", 0), action.ResultNavigate, fixedNow),
		action.Capture(action.NewRequest(action.Click, locator(t, "id", "missing"), action.Params{}), action.ResultClick, fixedNow),
		action.Capture(action.NewRequest(action.Click, locator(t, "id", "go"), action.Params{}), action.ResultClick, fixedNow),
	}

	report, err := s.Replay(ctx, saved, false)
	assert.ErrorIs(t, err, action.ErrElementNotFound)
	require.Len(t, report, 2, "replay stops at the first failure")
	assert.NoError(t, report[0].Err)
	assert.Equal(t, 2, report[1].Index)
	assert.Len(t, s.History(), 1)

	s.ClearHistory()
	report, err = s.Replay(ctx, saved, true)
	assert.ErrorIs(t, err, action.ErrElementNotFound)
	require.Len(t, report, 3)
	assert.NoError(t, report[2].Err)
	assert.Len(t, s.History(), 2)
}

func TestReplayRejectsUnknownKinds(t *testing.T) {
	b := newFakeBrowser()
	s := newTestSession(t, b, Options{Recording: true})
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	report, err := s.Replay(ctx, []action.Action{{Kind: "scroll"}}, false)
	assert.ErrorIs(t, err, action.ErrInvalidInput)
	require.Len(t, report, 1)
	assert.Empty(t, s.History())
}
