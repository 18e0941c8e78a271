package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/v0xg/stepforge/internal/action"
	"github.com/v0xg/stepforge/internal/ai"
	"github.com/v0xg/stepforge/internal/browser"
	"github.com/v0xg/stepforge/internal/config"
	"github.com/v0xg/stepforge/internal/executor"
	"github.com/v0xg/stepforge/internal/history"
	"github.com/v0xg/stepforge/internal/session"
)

// -- fakes --

type fakeElement struct {
	text  string
	attrs map[string]string
	typed []string
}

func (e *fakeElement) Click(context.Context) error       { return nil }
func (e *fakeElement) DoubleClick(context.Context) error { return nil }
func (e *fakeElement) RightClick(context.Context) error  { return nil }
func (e *fakeElement) Hover(context.Context) error       { return nil }
func (e *fakeElement) Clear(context.Context) error       { return nil }
func (e *fakeElement) SendKeys(_ context.Context, keys string) error {
	e.typed = append(e.typed, keys)
	return nil
}
func (e *fakeElement) Text(context.Context) (string, error) { return e.text, nil }
func (e *fakeElement) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}
func (e *fakeElement) DragTo(context.Context, executor.Element) error { return nil }
func (e *fakeElement) Center(context.Context) (executor.Point, error) {
	return executor.Point{X: 1, Y: 1}, nil
}

type fakeBrowser struct {
	elements map[string]*fakeElement
	page     *browser.PageMap
	closed   int
}

func (b *fakeBrowser) Navigate(context.Context, string) error { return nil }

func (b *fakeBrowser) Find(_ context.Context, loc action.Locator) (executor.Element, error) {
	if el, ok := b.elements[loc.String()]; ok {
		return el, nil
	}
	return nil, action.ErrElementNotFound
}

func (b *fakeBrowser) Screenshot(context.Context) ([]byte, error) { return nil, errors.New("no screen") }
func (b *fakeBrowser) Close()                                     { b.closed++ }

func (b *fakeBrowser) Scan(context.Context) (*browser.PageMap, error) { return b.page, nil }

type fakeProvider struct {
	reqs []action.Request
	goal string
}

func (p *fakeProvider) Suggest(_ context.Context, _ *browser.PageMap, goal string, _ []action.Action) ([]action.Request, error) {
	p.goal = goal
	return p.reqs, nil
}

// -- helpers --

var fixedNow = time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*app, *fakeBrowser) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Executor.Timeout = 50 * time.Millisecond
	cfg.Executor.NavigateWait = 0
	cfg.Screenshots.Enabled = false
	cfg.Output.Dir = t.TempDir()

	b := &fakeBrowser{elements: map[string]*fakeElement{
		"id=go": {text: "Go", attrs: map[string]string{"href": "/next"}},
		"name=q": {},
	}}
	a := &app{
		cfg:    cfg,
		logger: zaptest.NewLogger(t),
		launch: func(context.Context) (session.Browser, error) { return b, nil },
		clock:  func() time.Time { return fixedNow },
	}
	return a, b
}

func newTestConsole(a *app) (*console, *bytes.Buffer) {
	var out bytes.Buffer
	return newConsole(a, &out), &out
}

func run(t *testing.T, c *console, lines ...string) {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, c.Run(context.Background(), in))
}

// -- tests --

func TestConsoleRecordsAndSaves(t *testing.T) {
	a, b := newTestApp(t)
	c, out := newTestConsole(a)

	run(t, c,
		"start",
		"nav https://example.com",
		`send_keys name q "go rod" ENTER`,
		"click id go",
		"click id missing",
		"get_attribute id go href",
		"history",
		"save",
		"quit",
	)

	text := out.String()
	assert.Contains(t, text, "→ Starting browser... done")
	assert.Contains(t, text, "✓ Navigation successful")
	assert.NotContains(t, text, "✓ \n", "every confirmation carries a result")
	assert.Contains(t, text, "✓ Click successful")
	assert.Contains(t, text, "✗ Element not found within 50ms")
	assert.Contains(t, text, `✓ "/next"`)
	assert.Contains(t, text, `✓ "go rod"`)
	assert.Contains(t, text, "[4] 2026-10-19 15:30:00 get_attribute → id=go (href)")
	assert.Equal(t, []string{"go rod\ue007"}, b.elements["name=q"].typed)
	assert.Equal(t, 1, b.closed, "quit stops the browser")

	base := filepath.Join(a.cfg.Output.Dir, history.BaseName(fixedNow))
	saved, err := history.ReadFile(base + ".json")
	require.NoError(t, err)
	require.Len(t, saved, 4, "the failed click is not recorded")
	assert.Equal(t, action.Navigate, saved[0].Kind)
	assert.Equal(t, action.GetAttribute, saved[3].Kind)

	script, err := os.ReadFile(base + ".go")
	require.NoError(t, err)
	assert.Contains(t, string(script), `page.MustNavigate("https://example.com")`)
	assert.Contains(t, text, "⚠ step 4 (get_attribute) not in script")
}

func TestConsoleWithoutSession(t *testing.T) {
	a, _ := newTestApp(t)
	c, out := newTestConsole(a)

	run(t, c, "click id go", "stop", "history")

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "No active browser session. Run 'start' first."))
	assert.Contains(t, text, "No recorded actions.")
}

func TestConsoleInputErrors(t *testing.T) {
	a, _ := newTestApp(t)
	c, out := newTestConsole(a)

	run(t, c,
		"start",
		"start",
		"frobnicate",
		"click",
		"click banana x",
		"get_attribute id go",
		`send_keys id q "abc" F13`,
		`click id "open`,
		"# a comment",
		"",
	)

	text := out.String()
	assert.Contains(t, text, "A browser is already running.")
	assert.Contains(t, text, `Unknown command "frobnicate"`)
	assert.Contains(t, text, "usage: click <strategy> <value>")
	assert.Contains(t, text, "usage: get_attribute <strategy> <value> <attribute>")
	assert.Contains(t, text, `unknown special key "F13"`)
	assert.Contains(t, text, "unterminated quote")
	assert.Empty(t, c.session.History())
}

func TestConsoleRecordToggleAndCode(t *testing.T) {
	a, _ := newTestApp(t)
	c, out := newTestConsole(a)

	run(t, c,
		"start",
		"record off",
		"click id go",
		"record on",
		"nav https://example.com",
		"code python",
	)

	text := out.String()
	assert.Contains(t, text, "Recording is off")
	assert.Contains(t, text, "(not recorded: recording is off)")
	assert.Contains(t, text, "Recording is on")
	assert.Contains(t, text, `driver.get("https://example.com")`)
	assert.Len(t, c.session.History(), 1)
}

func TestConsoleReplay(t *testing.T) {
	a, _ := newTestApp(t)

	loc, err := action.NewLocator("id", "go")
	require.NoError(t, err)
	path, err := history.WriteFile(t.TempDir(), []action.Action{
		action.Capture(action.NewNavigate("https://example.com", 0), action.ResultNavigate, fixedNow),
		action.Capture(action.NewRequest(action.Click, loc, action.Params{}), action.ResultClick, fixedNow),
	}, fixedNow)
	require.NoError(t, err)

	c, out := newTestConsole(a)
	run(t, c, "start", "replay "+quoteArg(path))

	assert.Contains(t, out.String(), "[2] ✓ click id=go")
	assert.Len(t, c.session.History(), 2)
}

func TestConsoleSuggestAndAccept(t *testing.T) {
	a, b := newTestApp(t)
	b.page = &browser.PageMap{URL: "https://example.com", Title: "Example"}
	loc, err := action.NewLocator("id", "go")
	require.NoError(t, err)

	provider := &fakeProvider{reqs: []action.Request{action.NewRequest(action.Click, loc, action.Params{})}}
	c, out := newTestConsole(a)
	c.newProvider = func(ai.Options) (ai.Provider, error) { return provider, nil }

	run(t, c, "accept", "start", "scan", "suggest open the next page", "accept 2", "accept")

	text := out.String()
	assert.Contains(t, text, "no suggestions")
	assert.Contains(t, text, "Example (https://example.com), 0 interactive elements")
	assert.Equal(t, "open the next page", provider.goal)
	assert.Contains(t, text, "[1] click id go")
	assert.Contains(t, text, "suggestion number must be 1 to 1")
	assert.Contains(t, text, "✓ Click successful")
	assert.Len(t, c.session.History(), 1)
}

func TestConsoleHelpListsEveryKind(t *testing.T) {
	a, _ := newTestApp(t)
	c, out := newTestConsole(a)
	run(t, c, "help")

	for _, kind := range action.Kinds {
		assert.Contains(t, out.String(), string(kind))
	}
}

func TestConsoleStopsOnCancel(t *testing.T) {
	a, b := newTestApp(t)
	c, _ := newTestConsole(a)
	require.NoError(t, c.session.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	require.NoError(t, c.Run(ctx, r))
	assert.Equal(t, 1, b.closed)
}
