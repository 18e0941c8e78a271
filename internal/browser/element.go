package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/v0xg/stepforge/internal/action"
	"github.com/v0xg/stepforge/internal/executor"
)

// rodKeys maps special keys onto rod keyboard keys
var rodKeys = map[action.SpecialKey]input.Key{
	action.KeyBackspace:  input.Backspace,
	action.KeyTab:        input.Tab,
	action.KeyReturn:     input.Enter,
	action.KeyEnter:      input.Enter,
	action.KeyEscape:     input.Escape,
	action.KeySpace:      input.Space,
	action.KeyPageUp:     input.PageUp,
	action.KeyPageDown:   input.PageDown,
	action.KeyEnd:        input.End,
	action.KeyHome:       input.Home,
	action.KeyArrowLeft:  input.ArrowLeft,
	action.KeyArrowUp:    input.ArrowUp,
	action.KeyArrowRight: input.ArrowRight,
	action.KeyArrowDown:  input.ArrowDown,
	action.KeyDelete:     input.Delete,
}

// keyRun is either literal text to insert or a single key press
type keyRun struct {
	text  string
	key   input.Key
	isKey bool
}

// splitKeys cuts a send_keys string at WebDriver key code points
func splitKeys(s string) ([]keyRun, error) {
	var runs []keyRun
	start := 0
	for i, r := range s {
		sk, ok := action.KeyForCode(r)
		if !ok {
			continue
		}
		k, ok := rodKeys[sk]
		if !ok {
			return nil, fmt.Errorf("%w: no keyboard mapping for %s", action.ErrUnsupported, sk)
		}
		if i > start {
			runs = append(runs, keyRun{text: s[start:i]})
		}
		runs = append(runs, keyRun{key: k, isKey: true})
		start = i + len(string(r))
	}
	if start < len(s) {
		runs = append(runs, keyRun{text: s[start:]})
	}
	return runs, nil
}

// Element adapts a rod element to the executor's element capability
type Element struct {
	el   *rod.Element
	page *rod.Page
}

var _ executor.Element = (*Element)(nil)

func (e *Element) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e *Element) DoubleClick(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 2)
}

func (e *Element) RightClick(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonRight, 1)
}

func (e *Element) Hover(ctx context.Context) error {
	return e.el.Context(ctx).Hover()
}

// SendKeys inserts literal runs as text and presses special keys in order
func (e *Element) SendKeys(ctx context.Context, keys string) error {
	runs, err := splitKeys(keys)
	if err != nil {
		return err
	}
	el := e.el.Context(ctx)
	if len(runs) == 0 {
		return el.Focus()
	}
	for _, run := range runs {
		if run.isKey {
			err = el.Type(run.key)
		} else {
			err = el.Input(run.text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Clear selects the current value and deletes it
func (e *Element) Clear(ctx context.Context) error {
	el := e.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input("")
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// Center returns the midpoint of the element's box after scrolling it into view
func (e *Element) Center(ctx context.Context) (executor.Point, error) {
	el := e.el.Context(ctx)
	if err := el.ScrollIntoView(); err != nil {
		return executor.Point{}, err
	}
	shape, err := el.Shape()
	if err != nil {
		return executor.Point{}, err
	}
	box := shape.Box()
	if box == nil {
		return executor.Point{}, fmt.Errorf("element has no shape")
	}
	return executor.Point{
		X: int(box.X + box.Width/2),
		Y: int(box.Y + box.Height/2),
	}, nil
}

// DragTo presses on this element, moves to the target's centre and releases
func (e *Element) DragTo(ctx context.Context, target executor.Element) error {
	from, err := e.Center(ctx)
	if err != nil {
		return fmt.Errorf("source position: %w", err)
	}
	to, err := target.Center(ctx)
	if err != nil {
		return fmt.Errorf("target position: %w", err)
	}

	mouse := e.page.Mouse
	if err := mouse.MoveLinear(proto.NewPoint(float64(from.X), float64(from.Y)), 5); err != nil {
		return err
	}
	if err := mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	if err := mouse.MoveLinear(proto.NewPoint(float64(to.X), float64(to.Y)), 20); err != nil {
		_ = mouse.Up(proto.InputMouseButtonLeft, 1)
		return err
	}
	return mouse.Up(proto.InputMouseButtonLeft, 1)
}
