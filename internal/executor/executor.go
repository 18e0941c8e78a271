package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/v0xg/stepforge/internal/action"
	"go.uber.org/zap"
)

// DefaultTimeout bounds element resolution when Options.Timeout is zero
const DefaultTimeout = 10 * time.Second

// Options configures execution behavior
type Options struct {
	Timeout time.Duration // element resolution bound
	// Sleep waits for the navigate settle delay. Defaults to a
	// context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Outcome is the success value of an execution
type Outcome struct {
	Result   string
	Absent   bool     // get_attribute: the attribute does not exist
	Pointer  *Pointer // where a pointer gesture landed, if known
	Duration time.Duration
}

type handler func(ctx context.Context, d Driver, req action.Request) (Outcome, error)

// Executor resolves locators and performs actions against a Driver.
// It never records anything; the caller appends to its log on success.
type Executor struct {
	opts     Options
	logger   *zap.Logger
	handlers map[action.Kind]handler
}

// New creates an executor with one handler per action kind
func New(logger *zap.Logger, opts Options) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	e := &Executor{opts: opts, logger: logger.Named("executor")}
	e.handlers = map[action.Kind]handler{
		action.Navigate:     e.navigate,
		action.Click:        e.click,
		action.SendKeys:     e.sendKeys,
		action.Clear:        e.clear,
		action.GetText:      e.getText,
		action.GetAttribute: e.getAttribute,
		action.DoubleClick:  e.doubleClick,
		action.RightClick:   e.rightClick,
		action.Hover:        e.hover,
		action.DragAndDrop:  e.dragAndDrop,
	}
	return e
}

// Handles reports whether kind has a handler
func (e *Executor) Handles(kind action.Kind) bool {
	_, ok := e.handlers[kind]
	return ok
}

// Timeout returns the element resolution bound in effect
func (e *Executor) Timeout() time.Duration {
	return e.opts.Timeout
}

// Execute validates req, then performs it against d.
func (e *Executor) Execute(ctx context.Context, d Driver, req action.Request) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}
	if d == nil {
		return Outcome{}, fmt.Errorf("%w: no active browser session", action.ErrSessionUnavailable)
	}
	h, ok := e.handlers[req.Kind]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", action.ErrUnsupported, req.Kind)
	}

	start := time.Now()
	out, err := h(ctx, d, req)
	out.Duration = time.Since(start)
	if err != nil {
		e.logger.Debug("Action failed.", zap.Stringer("request", req), zap.Duration("elapsed", out.Duration), zap.Error(err))
		return Outcome{}, err
	}
	e.logger.Debug("Action executed.", zap.Stringer("request", req), zap.String("result", out.Result), zap.Duration("elapsed", out.Duration))
	return out, nil
}

// resolve waits up to the configured timeout for loc to match.
func (e *Executor) resolve(ctx context.Context, d Driver, loc action.Locator) (Element, error) {
	findCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	el, err := d.Find(findCtx, loc)
	if err == nil && el == nil {
		err = action.ErrElementNotFound
	}
	if err == nil {
		return el, nil
	}

	switch {
	case ctx.Err() != nil:
		// the caller gave up, not the bounded wait
		return nil, fmt.Errorf("resolving %s: %w", loc, ctx.Err())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, action.ErrElementNotFound):
		return nil, fmt.Errorf("%w: %s after %v", action.ErrElementNotFound, loc, e.opts.Timeout)
	case isTaxonomy(err):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: resolving %s: %v", action.ErrExecution, loc, err)
	}
}

func isTaxonomy(err error) bool {
	for _, target := range []error{
		action.ErrInvalidInput, action.ErrInvalidParameters, action.ErrSessionUnavailable,
		action.ErrExecution, action.ErrUnsupported,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// perform wraps element errors into the execution failure class
func perform(kind action.Kind, err error) error {
	if err == nil {
		return nil
	}
	if isTaxonomy(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", action.ErrExecution, kind, err)
}

func (e *Executor) pointerAt(ctx context.Context, el Element, pressed bool) *Pointer {
	p, err := el.Center(ctx)
	if err != nil {
		e.logger.Debug("Could not locate element centre.", zap.Error(err))
		return nil
	}
	return &Pointer{Point: p, Pressed: pressed}
}

func (e *Executor) navigate(ctx context.Context, d Driver, req action.Request) (Outcome, error) {
	if err := d.Navigate(ctx, req.URL); err != nil {
		return Outcome{}, perform(req.Kind, err)
	}
	if req.WaitSeconds > 0 {
		if err := e.opts.Sleep(ctx, time.Duration(req.WaitSeconds)*time.Second); err != nil {
			return Outcome{}, fmt.Errorf("waiting after navigation: %w", err)
		}
	}
	return Outcome{Result: action.ResultNavigate}, nil
}

func (e *Executor) click(ctx context.Context, d Driver, req action.Request) (Outcome, error) {
	return e.gesture(ctx, d, req, Element.Click, action.ResultClick, true)
}

func (e *Executor) doubleClick(ctx context.Context, d Driver, req action.Request) (Outcome, error) {
	return e.gesture(ctx, d, req, Element.DoubleClick, action.ResultDoubleClick, true)
}

func (e *Executor) rightClick(ctx context.Context, d Driver, req action.Request) (Outcome, error) {
	return e.gesture(ctx, d, req, Element.RightClick, action.ResultRightClick, true)
}

func (e *Executor) hover(ctx context.Context, d Driver, req action.Request) (Outcome, error) {
	return e.gesture(ctx, d, req, Element.Hover, action.ResultHover, false)
}

// gesture runs a parameterless pointer operation anchored at the element
func (e *Executor) gesture(ctx context.Context, d Driver, req action.Request, op func(Element, context.Context) error, result string, pressed bool) (Outcome, error) {
	el, err := e.resolve(ctx, d, req.Locator)
	if err != nil {
		return Outcome{}, err
	}
	pointer := e.pointerAt(ctx, el, pressed)
	if err := op(el, ctx); err != nil {
		return Outcome{}, perform(req.Kind, err)
	}
	return Outcome{Result: result, Pointer: pointer}, nil
}

func (e *Executor) sendKeys(ctx context.Context, d Driver, req action.Request) (Outcome, error) {
	keys, err := action.ComposeKeys(req.Params.Text, req.Params.Keys)
	if err != nil {
		return Outcome{}, err
	}
	el, err := e.resolve(ctx, d, req.Locator)
	if err != nil {
		return Outcome{}, err
	}
	if err := el.SendKeys(ctx, keys); err != nil {
		return Outcome{}, perform(req.Kind, err)
	}
	// special keys are not echoed
	return Outcome{Result: req.Params.Text}, nil
}

func (e *Executor) clear(ctx context.Context, d Driver, req action.Request) (Outcome, error) {
	el, err := e.resolve(ctx, d, req.Locator)
	if err != nil {
		return Outcome{}, err
	}
	if err := el.Clear(ctx); err != nil {
		return Outcome{}, perform(req.Kind, err)
	}
	return Outcome{Result: action.ResultClear}, nil
}

func (e *Executor) getText(ctx context.Context, d Driver, req action.Request) (Outcome, error) {
	el, err := e.resolve(ctx, d, req.Locator)
	if err != nil {
		return Outcome{}, err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return Outcome{}, perform(req.Kind, err)
	}
	return Outcome{Result: text}, nil
}

func (e *Executor) getAttribute(ctx context.Context, d Driver, req action.Request) (Outcome, error) {
	el, err := e.resolve(ctx, d, req.Locator)
	if err != nil {
		return Outcome{}, err
	}
	value, ok, err := el.Attribute(ctx, req.Params.Attribute)
	if err != nil {
		return Outcome{}, perform(req.Kind, err)
	}
	return Outcome{Result: value, Absent: !ok}, nil
}

func (e *Executor) dragAndDrop(ctx context.Context, d Driver, req action.Request) (Outcome, error) {
	source, err := e.resolve(ctx, d, req.Locator)
	if err != nil {
		return Outcome{}, fmt.Errorf("source: %w", err)
	}
	target, err := e.resolve(ctx, d, req.Params.Target)
	if err != nil {
		return Outcome{}, fmt.Errorf("target: %w", err)
	}
	if err := source.DragTo(ctx, target); err != nil {
		return Outcome{}, perform(req.Kind, err)
	}
	return Outcome{Result: action.ResultDragAndDrop, Pointer: e.pointerAt(ctx, target, false)}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
