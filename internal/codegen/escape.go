package codegen

import (
	"fmt"
	"go/format"
	"strings"
	"time"

	"github.com/v0xg/stepforge/internal/action"
)

// rod lib/input key constants, by special key
var rodKeyNames = map[action.SpecialKey]string{
	action.KeyBackspace:  "input.Backspace",
	action.KeyTab:        "input.Tab",
	action.KeyReturn:     "input.Enter",
	action.KeyEnter:      "input.Enter",
	action.KeyEscape:     "input.Escape",
	action.KeySpace:      "input.Space",
	action.KeyPageUp:     "input.PageUp",
	action.KeyPageDown:   "input.PageDown",
	action.KeyEnd:        "input.End",
	action.KeyHome:       "input.Home",
	action.KeyArrowLeft:  "input.ArrowLeft",
	action.KeyArrowUp:    "input.ArrowUp",
	action.KeyArrowRight: "input.ArrowRight",
	action.KeyArrowDown:  "input.ArrowDown",
	action.KeyDelete:     "input.Delete",
}

func rodKeys(keys []action.SpecialKey) string {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, rodKeyNames[k])
	}
	return strings.Join(names, ", ")
}

// goDuration renders d as a time package expression
func goDuration(d time.Duration) string {
	switch {
	case d%time.Second == 0:
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	case d%time.Millisecond == 0:
		return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
	default:
		return fmt.Sprintf("time.Duration(%d)", int64(d))
	}
}

// pyQuote renders s as a double-quoted Python string literal. Everything
// outside printable ASCII is written as an escape so the script stays
// plain ASCII.
func pyQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			switch {
			case r >= 0x20 && r < 0x7f:
				b.WriteRune(r)
			case r <= 0xff:
				fmt.Fprintf(&b, `\x%02x`, r)
			case r <= 0xffff:
				fmt.Fprintf(&b, `\u%04x`, r)
			default:
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Selenium Keys attribute names differ from ours for the arrows
var pyKeyNames = map[action.SpecialKey]string{
	action.KeyArrowLeft:  "LEFT",
	action.KeyArrowUp:    "UP",
	action.KeyArrowRight: "RIGHT",
	action.KeyArrowDown:  "DOWN",
}

// pyKeys renders the send_keys argument: the quoted text followed by each
// special key as a Keys attribute.
func pyKeys(text string, keys []action.SpecialKey) string {
	parts := make([]string, 0, len(keys)+1)
	if text != "" || len(keys) == 0 {
		parts = append(parts, pyQuote(text))
	}
	for _, k := range keys {
		name, ok := pyKeyNames[k]
		if !ok {
			name = string(k)
		}
		parts = append(parts, "Keys."+name)
	}
	return strings.Join(parts, " + ")
}

func formatGo(src []byte) ([]byte, error) {
	out, err := format.Source(src)
	if err != nil {
		return nil, fmt.Errorf("formatting generated go source: %w", err)
	}
	return out, nil
}
