package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/v0xg/stepforge/internal/action"
	"github.com/v0xg/stepforge/internal/browser"
)

const systemPrompt = `You drive a browser automation console one step at a time. Convert the user's goal into the next console steps.

You will receive:
1. A page map with the URL, title and interactive elements of the current page. Every element carries a locator (strategy and value) that resolves it.
2. The steps already recorded in this session.
3. The user's goal.

Output a JSON array of steps. Each step has:
- "action": one of "navigate", "click", "send_keys", "clear", "get_text", "get_attribute", "double_click", "right_click", "hover", "drag_and_drop"
- "url" and optional "wait_seconds": for navigate only
- "locator_type": one of "ID", "NAME", "CLASS_NAME", "TAG_NAME", "XPATH", "CSS_SELECTOR", "LINK_TEXT", "PARTIAL_LINK_TEXT" (every action except navigate)
- "locator_value": the locator value
- "parameters": an object, only when the action needs one:
  - send_keys: {"text": "...", "keys": ["ENTER"]} where keys is optional and drawn from BACKSPACE, TAB, RETURN, ENTER, ESCAPE, SPACE, PAGE_UP, PAGE_DOWN, END, HOME, ARROW_LEFT, ARROW_UP, ARROW_RIGHT, ARROW_DOWN, DELETE
  - get_attribute: {"attribute": "href"}
  - drag_and_drop: {"target_locator_type": "ID", "target_locator_value": "..."}

Guidelines:
- Use only locators from the provided page map
- Stop at the first step that will load a new page or open new content; you will be asked again once it has run
- If the goal has already been reached, return an empty array: []

Example output:
[
  {"action": "send_keys", "locator_type": "NAME", "locator_value": "q", "parameters": {"text": "golang", "keys": ["ENTER"]}}
]

Respond ONLY with the JSON array, no explanation or markdown.`

func buildUserPrompt(page *browser.PageMap, goal string, done []action.Action) (string, error) {
	pageJSON, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal page map: %w", err)
	}
	records := make([]action.Record, 0, len(done))
	for _, a := range done {
		records = append(records, action.ToRecord(a))
	}
	doneJSON, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal recorded steps: %w", err)
	}

	var b strings.Builder
	b.WriteString("Page map:\n")
	b.Write(pageJSON)
	b.WriteString("\n\nRecorded steps:\n")
	b.Write(doneJSON)
	b.WriteString("\n\nGoal: ")
	b.WriteString(goal)
	return b.String(), nil
}

// parseSuggestions extracts the JSON array from a response that may carry
// surrounding text, and validates every step.
func parseSuggestions(response string) ([]action.Request, error) {
	raw, err := extractArray(response)
	if err != nil {
		return nil, fmt.Errorf("%w\nResponse: %s", err, response)
	}
	var records []action.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("failed to parse suggested steps: %w", err)
	}

	reqs := make([]action.Request, 0, len(records))
	for i, rec := range records {
		req := action.FromRecord(rec).Request()
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("suggested step %d: %w", i+1, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// extractArray returns the first balanced JSON array in s. Brackets inside
// string literals are skipped.
func extractArray(s string) (string, error) {
	start := strings.Index(s, "[")
	if start == -1 {
		return "", fmt.Errorf("no JSON array found in response")
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("no matching closing bracket found")
}
