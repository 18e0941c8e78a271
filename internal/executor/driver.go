package executor

import (
	"context"

	"github.com/v0xg/stepforge/internal/action"
)

// Driver is the capability the executor needs from a live browser session.
// internal/browser provides the rod implementation.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	// Find blocks until at least one element matches loc or ctx is done.
	Find(ctx context.Context, loc action.Locator) (Element, error)
}

// Element is a resolved element in the live document
type Element interface {
	Click(ctx context.Context) error
	DoubleClick(ctx context.Context) error
	RightClick(ctx context.Context) error
	Hover(ctx context.Context) error
	// SendKeys types keys, where WebDriver key code points stand for special keys
	SendKeys(ctx context.Context, keys string) error
	Clear(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	// Attribute returns ok=false when the attribute is absent
	Attribute(ctx context.Context, name string) (value string, ok bool, err error)
	DragTo(ctx context.Context, target Element) error
	Center(ctx context.Context) (Point, error)
}

// Point is a viewport position in CSS pixels
type Point struct {
	X int
	Y int
}

// Pointer describes where a pointer gesture landed
type Pointer struct {
	Point
	Pressed bool // a button went down at this position
}
