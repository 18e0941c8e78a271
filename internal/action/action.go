package action

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the closed set of recordable operations
type Kind string

const (
	Navigate     Kind = "navigate"
	Click        Kind = "click"
	SendKeys     Kind = "send_keys"
	Clear        Kind = "clear"
	GetText      Kind = "get_text"
	GetAttribute Kind = "get_attribute"
	DoubleClick  Kind = "double_click"
	RightClick   Kind = "right_click"
	Hover        Kind = "hover"
	DragAndDrop  Kind = "drag_and_drop"
)

// Kinds lists every kind. Executor and codegen tables are checked against it.
var Kinds = []Kind{
	Navigate, Click, SendKeys, Clear, GetText, GetAttribute, DoubleClick, RightClick, Hover, DragAndDrop,
}

// ParseKind validates a kind name
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Known() {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, s)
	}
	return k, nil
}

// Known reports whether k is a member of Kinds
func (k Kind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// NeedsLocator is true for every kind except navigate
func (k Kind) NeedsLocator() bool {
	return k != Navigate
}

// Fixed confirmation results
const (
	ResultClick       = "Click successful"
	ResultClear       = "Element cleared"
	ResultDoubleClick = "Double click successful"
	ResultRightClick  = "Right click successful"
	ResultHover       = "Hover successful"
	ResultDragAndDrop = "Drag and drop successful"
	ResultNavigate    = "Navigation successful"
)

// TimestampLayout is second resolution and sorts lexically
const TimestampLayout = "2006-01-02 15:04:05"

// Params is the kind-dependent payload of an action
type Params struct {
	Text      string       // send_keys
	Keys      []SpecialKey // send_keys, appended after Text in order
	Attribute string       // get_attribute
	Target    Locator      // drag_and_drop
}

// IsZero reports whether no parameter is set
func (p Params) IsZero() bool {
	return p.Text == "" && len(p.Keys) == 0 && p.Attribute == "" && p.Target.IsZero()
}

// Request is what the executor is asked to perform
type Request struct {
	Kind        Kind
	Locator     Locator
	Params      Params
	URL         string // navigate only
	WaitSeconds int    // navigate only, settle delay after load
}

// NewNavigate builds a navigate request
func NewNavigate(url string, waitSeconds int) Request {
	return Request{Kind: Navigate, URL: url, WaitSeconds: waitSeconds}
}

// NewRequest builds a locator-bound request
func NewRequest(kind Kind, loc Locator, params Params) Request {
	return Request{Kind: kind, Locator: loc, Params: params}
}

// Validate checks the request is well formed before any session is touched.
func (r Request) Validate() error {
	if !r.Kind.Known() {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidInput, r.Kind)
	}
	if r.Kind == Navigate {
		if strings.TrimSpace(r.URL) == "" {
			return fmt.Errorf("%w: navigate requires a url", ErrInvalidParameters)
		}
		if r.WaitSeconds < 0 {
			return fmt.Errorf("%w: wait seconds must not be negative", ErrInvalidParameters)
		}
		return nil
	}
	if err := r.Locator.Validate(); err != nil {
		return err
	}
	switch r.Kind {
	case SendKeys:
		for _, k := range r.Params.Keys {
			if _, ok := k.Code(); !ok {
				return fmt.Errorf("%w: unknown special key %q", ErrInvalidInput, k)
			}
		}
	case GetAttribute:
		if strings.TrimSpace(r.Params.Attribute) == "" {
			return fmt.Errorf("%w: get_attribute requires an attribute name", ErrInvalidParameters)
		}
	case DragAndDrop:
		if r.Params.Target.IsZero() {
			return fmt.Errorf("%w: drag_and_drop requires a target locator", ErrInvalidParameters)
		}
		if err := r.Params.Target.Validate(); err != nil {
			return fmt.Errorf("target: %w", err)
		}
	}
	return nil
}

func (r Request) String() string {
	switch r.Kind {
	case Navigate:
		return fmt.Sprintf("navigate %s", r.URL)
	case SendKeys:
		return fmt.Sprintf("send_keys %s (text: %q)", r.Locator, r.Params.Text)
	case GetAttribute:
		return fmt.Sprintf("get_attribute %s (%s)", r.Locator, r.Params.Attribute)
	case DragAndDrop:
		return fmt.Sprintf("drag_and_drop %s -> %s", r.Locator, r.Params.Target)
	default:
		return fmt.Sprintf("%s %s", r.Kind, r.Locator)
	}
}

// Action is one recorded, successfully executed operation. It is a value
// type and is never mutated after capture.
type Action struct {
	Kind        Kind
	Locator     Locator
	Params      Params
	URL         string
	WaitSeconds int
	Result      string
	HasResult   bool
	Timestamp   string
}

// Capture records a successful request with its result at time t.
func Capture(req Request, result string, t time.Time) Action {
	a := Action{
		Kind:        req.Kind,
		Locator:     req.Locator,
		Params:      req.Params,
		URL:         req.URL,
		WaitSeconds: req.WaitSeconds,
		Timestamp:   t.Format(TimestampLayout),
	}
	if len(req.Params.Keys) > 0 {
		a.Params.Keys = append([]SpecialKey(nil), req.Params.Keys...)
	}
	// navigate entries carry no result in the persisted log
	if req.Kind != Navigate {
		a.Result = result
		a.HasResult = true
	}
	return a
}

// Request recovers what was executed, for replay
func (a Action) Request() Request {
	return Request{
		Kind:        a.Kind,
		Locator:     a.Locator,
		Params:      a.Params,
		URL:         a.URL,
		WaitSeconds: a.WaitSeconds,
	}
}
