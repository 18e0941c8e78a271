// Package codegen lowers a recorded action sequence into a standalone script
// that replays it against a fresh browser.
//
// Only navigate, click, send_keys and clear are lowered. Read operations
// (get_text, get_attribute) have nothing to replay, and pointer gestures
// (double_click, right_click, hover, drag_and_drop) are recorded for the
// session history only. Such steps leave a comment in the script and are
// reported in Script.Skipped.
package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"text/template"
	"time"

	"github.com/v0xg/stepforge/internal/action"
)

// Target is the language of the generated script
type Target string

const (
	// TargetGo emits a go-rod program
	TargetGo Target = "go"
	// TargetPython emits a Selenium WebDriver script
	TargetPython Target = "python"
)

// ParseTarget validates a target name
func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case TargetGo, "golang":
		return TargetGo, nil
	case TargetPython, "py":
		return TargetPython, nil
	}
	return "", fmt.Errorf("unknown target %q (supported: go, python)", s)
}

// Ext is the file extension for scripts of this target
func (t Target) Ext() string {
	if t == TargetPython {
		return ".py"
	}
	return ".go"
}

// DefaultTimeout is the element wait written into scripts
const DefaultTimeout = 10 * time.Second

// Options configures generation
type Options struct {
	Target   Target
	Headless bool
	Timeout  time.Duration
}

// Skip reports a step that the script does not reproduce
type Skip struct {
	Index  int // 1-based position in the log
	Kind   action.Kind
	Reason string
}

// Script is the generated source plus what was left out
type Script struct {
	Target  Target
	Source  string
	Steps   int // steps lowered into statements
	Skipped []Skip
}

type lowering int

const (
	lowerNone lowering = iota
	lowerNavigate
	lowerClick
	lowerSendKeys
	lowerClear
)

// lowerings decides, per kind, what the generator emits. Every kind must
// appear here; a test enforces it.
var lowerings = map[action.Kind]lowering{
	action.Navigate:     lowerNavigate,
	action.Click:        lowerClick,
	action.SendKeys:     lowerSendKeys,
	action.Clear:        lowerClear,
	action.GetText:      lowerNone,
	action.GetAttribute: lowerNone,
	action.DoubleClick:  lowerNone,
	action.RightClick:   lowerNone,
	action.Hover:        lowerNone,
	action.DragAndDrop:  lowerNone,
}

// Supported reports whether kind is reproduced in generated scripts
func Supported(kind action.Kind) bool {
	return lowerings[kind] != lowerNone
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("codegen").Funcs(template.FuncMap{
	"goquote":    strconv.Quote,
	"goduration": goDuration,
	"rodkeys":    rodKeys,
	"pyquote":    pyQuote,
	"pykeys":     pyKeys,
	"seconds":    func(d time.Duration) string { return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) },
}).ParseFS(templateFS, "templates/*.tmpl"))

// step is one log entry prepared for a template
type step struct {
	Index   int
	Kind    action.Kind
	Lower   lowering
	Note    string // comment for skipped steps
	URL     string
	Wait    int
	Locator action.Locator
	Query   action.Query
	Text    string
	Keys    []action.SpecialKey
}

func (s step) IsNavigate() bool { return s.Lower == lowerNavigate }
func (s step) IsClick() bool    { return s.Lower == lowerClick }
func (s step) IsSendKeys() bool { return s.Lower == lowerSendKeys }
func (s step) IsClear() bool    { return s.Lower == lowerClear }
func (s step) IsSkipped() bool  { return s.Lower == lowerNone }
func (s step) IsXPath() bool    { return s.Query.Language == action.XPath }

type scriptData struct {
	Steps        []step
	Headless     bool
	Timeout      time.Duration
	NeedsSleep   bool // a navigate step carries a settle wait
	NeedsElement bool // at least one element step
	NeedsKeys    bool // special keys are sent
	UsesPage     bool
	Statements   int
}

// Generate lowers actions into a script. It is deterministic: the same
// actions and options always produce byte-identical source. Malformed
// entries are skipped and reported; the only error is an unknown target.
func Generate(actions []action.Action, opts Options) (*Script, error) {
	if opts.Target == "" {
		opts.Target = TargetGo
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	tmpl, ok := map[Target]string{TargetGo: "go.tmpl", TargetPython: "python.tmpl"}[opts.Target]
	if !ok {
		return nil, fmt.Errorf("unknown target %q", opts.Target)
	}

	data := scriptData{Headless: opts.Headless, Timeout: opts.Timeout}
	script := &Script{Target: opts.Target}
	for i, a := range actions {
		st, skip := prepare(i+1, a)
		if skip != nil {
			script.Skipped = append(script.Skipped, *skip)
		}
		switch st.Lower {
		case lowerNavigate:
			data.UsesPage = true
			data.Statements++
			if st.Wait > 0 {
				data.NeedsSleep = true
			}
		case lowerClick, lowerSendKeys, lowerClear:
			data.UsesPage = true
			data.NeedsElement = true
			data.Statements++
			if len(st.Keys) > 0 {
				data.NeedsKeys = true
			}
		}
		data.Steps = append(data.Steps, st)
	}
	script.Steps = data.Statements

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return nil, fmt.Errorf("rendering %s script: %w", opts.Target, err)
	}
	src := buf.Bytes()
	if opts.Target == TargetGo {
		formatted, err := formatGo(src)
		if err != nil {
			return nil, err
		}
		src = formatted
	}
	script.Source = string(src)
	return script, nil
}

// prepare turns a log entry into a template step, or a skipped step with
// the reason it is not reproduced.
func prepare(index int, a action.Action) (step, *Skip) {
	st := step{Index: index, Kind: a.Kind}
	lower, known := lowerings[a.Kind]
	if !known {
		st.Note = fmt.Sprintf("step %d: unknown action %s skipped", index, strconv.Quote(string(a.Kind)))
		return st, &Skip{Index: index, Kind: a.Kind, Reason: "unknown action kind"}
	}
	if lower == lowerNone {
		st.Note = fmt.Sprintf("step %d: %s is not replayed", index, a.Kind)
		return st, &Skip{Index: index, Kind: a.Kind, Reason: "kind is not reproduced in generated scripts"}
	}
	req := a.Request()
	if err := req.Validate(); err != nil {
		st.Note = fmt.Sprintf("step %d: malformed %s skipped", index, a.Kind)
		return st, &Skip{Index: index, Kind: a.Kind, Reason: err.Error()}
	}

	st.Lower = lower
	switch lower {
	case lowerNavigate:
		st.URL = a.URL
		st.Wait = a.WaitSeconds
		return st, nil
	case lowerSendKeys:
		st.Text = a.Params.Text
		st.Keys = a.Params.Keys
	}
	q, err := a.Locator.Query()
	if err != nil {
		st.Lower = lowerNone
		st.Note = fmt.Sprintf("step %d: malformed %s skipped", index, a.Kind)
		return st, &Skip{Index: index, Kind: a.Kind, Reason: err.Error()}
	}
	st.Locator = a.Locator
	st.Query = q
	return st, nil
}
