package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/v0xg/stepforge/internal/action"
)

// actionUsage is the argument synopsis of each action command
var actionUsage = map[action.Kind]string{
	action.Navigate:     "<url> [wait_seconds]",
	action.Click:        "<strategy> <value>",
	action.SendKeys:     "<strategy> <value> [text] [KEY...]",
	action.Clear:        "<strategy> <value>",
	action.GetText:      "<strategy> <value>",
	action.GetAttribute: "<strategy> <value> <attribute>",
	action.DoubleClick:  "<strategy> <value>",
	action.RightClick:   "<strategy> <value>",
	action.Hover:        "<strategy> <value>",
	action.DragAndDrop:  "<strategy> <value> <target_strategy> <target_value>",
}

// parseNavigate reads "<url> [wait_seconds]"
func parseNavigate(args []string, defaultWait int) (action.Request, error) {
	if len(args) == 0 || len(args) > 2 {
		return action.Request{}, usageError(action.Navigate)
	}
	wait := defaultWait
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return action.Request{}, fmt.Errorf("%w: wait must be a whole number of seconds, got %q", action.ErrInvalidParameters, args[1])
		}
		wait = n
	}
	req := action.NewNavigate(args[0], wait)
	return req, req.Validate()
}

// parseAction reads the arguments of a locator-bound action command
func parseAction(kind action.Kind, args []string) (action.Request, error) {
	if len(args) < 2 {
		return action.Request{}, usageError(kind)
	}
	loc, err := action.NewLocator(args[0], args[1])
	if err != nil {
		return action.Request{}, err
	}
	rest := args[2:]

	var params action.Params
	switch kind {
	case action.SendKeys:
		if len(rest) > 0 {
			params.Text = rest[0]
			for _, name := range rest[1:] {
				k, err := action.ParseSpecialKey(name)
				if err != nil {
					return action.Request{}, err
				}
				params.Keys = append(params.Keys, k)
			}
		}
	case action.GetAttribute:
		if len(rest) != 1 {
			return action.Request{}, usageError(kind)
		}
		params.Attribute = rest[0]
	case action.DragAndDrop:
		if len(rest) != 2 {
			return action.Request{}, usageError(kind)
		}
		target, err := action.NewLocator(rest[0], rest[1])
		if err != nil {
			return action.Request{}, fmt.Errorf("target: %w", err)
		}
		params.Target = target
	default:
		if len(rest) > 0 {
			return action.Request{}, usageError(kind)
		}
	}

	req := action.NewRequest(kind, loc, params)
	return req, req.Validate()
}

func usageError(kind action.Kind) error {
	return fmt.Errorf("%w: usage: %s %s", action.ErrInvalidInput, kind, actionUsage[kind])
}

// formatCommand renders req as the console line that performs it
func formatCommand(req action.Request) string {
	if req.Kind == action.Navigate {
		return "navigate " + joinArgs(req.URL, strconv.Itoa(req.WaitSeconds))
	}
	args := []string{string(req.Locator.Strategy), req.Locator.Value}
	switch req.Kind {
	case action.SendKeys:
		if req.Params.Text != "" || len(req.Params.Keys) > 0 {
			args = append(args, req.Params.Text)
		}
		for _, k := range req.Params.Keys {
			args = append(args, string(k))
		}
	case action.GetAttribute:
		args = append(args, req.Params.Attribute)
	case action.DragAndDrop:
		args = append(args, string(req.Params.Target.Strategy), req.Params.Target.Value)
	}
	return string(req.Kind) + " " + joinArgs(args...)
}

// describeAction is the one-line history entry for a recorded action
func describeAction(a action.Action) string {
	var b strings.Builder
	switch a.Kind {
	case action.Navigate:
		fmt.Fprintf(&b, "navigate → %s", a.URL)
		if a.WaitSeconds > 0 {
			fmt.Fprintf(&b, " (wait %ds)", a.WaitSeconds)
		}
	case action.SendKeys:
		fmt.Fprintf(&b, "send_keys → %s (text: %q", a.Locator, a.Params.Text)
		for _, k := range a.Params.Keys {
			fmt.Fprintf(&b, " +%s", k)
		}
		b.WriteString(")")
	case action.GetAttribute:
		fmt.Fprintf(&b, "get_attribute → %s (%s)", a.Locator, a.Params.Attribute)
	case action.DragAndDrop:
		fmt.Fprintf(&b, "drag_and_drop → %s to %s", a.Locator, a.Params.Target)
	default:
		fmt.Fprintf(&b, "%s → %s", a.Kind, a.Locator)
	}
	if a.HasResult && a.Kind != action.Navigate {
		fmt.Fprintf(&b, " = %q", a.Result)
	}
	return b.String()
}
