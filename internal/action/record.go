package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is the flat key-value form used in persisted action logs.
// Absent fields are omitted rather than written as null.
type Record struct {
	Action       string        `json:"action"`
	URL          string        `json:"url,omitempty"`
	WaitSeconds  int           `json:"wait_seconds,omitempty"`
	LocatorType  string        `json:"locator_type,omitempty"`
	LocatorValue string        `json:"locator_value,omitempty"`
	Parameters   *RecordParams `json:"parameters,omitempty"`
	Result       *string       `json:"result,omitempty"`
	Timestamp    string        `json:"timestamp"`
}

// RecordParams holds kind-dependent parameters
type RecordParams struct {
	Text               string   `json:"text,omitempty"`
	Keys               []string `json:"keys,omitempty"`
	Attribute          string   `json:"attribute,omitempty"`
	TargetLocatorType  string   `json:"target_locator_type,omitempty"`
	TargetLocatorValue string   `json:"target_locator_value,omitempty"`
}

// UnmarshalJSON also accepts a bare string, which is how older logs stored
// the send_keys text.
func (p *RecordParams) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*p = RecordParams{Text: text}
		return nil
	}
	type plain RecordParams
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parameters: %w", err)
	}
	*p = RecordParams(v)
	return nil
}

// ToRecord flattens an action for persistence
func ToRecord(a Action) Record {
	r := Record{
		Action:    string(a.Kind),
		Timestamp: a.Timestamp,
	}
	if a.Kind == Navigate {
		r.URL = a.URL
		r.WaitSeconds = a.WaitSeconds
		return r
	}

	r.LocatorType = a.Locator.Strategy.Selenium()
	r.LocatorValue = a.Locator.Value
	if a.HasResult {
		result := a.Result
		r.Result = &result
	}
	if !a.Params.IsZero() {
		p := &RecordParams{
			Text:      a.Params.Text,
			Attribute: a.Params.Attribute,
		}
		for _, k := range a.Params.Keys {
			p.Keys = append(p.Keys, string(k))
		}
		if !a.Params.Target.IsZero() {
			p.TargetLocatorType = a.Params.Target.Strategy.Selenium()
			p.TargetLocatorValue = a.Params.Target.Value
		}
		r.Parameters = p
	}
	return r
}

// FromRecord rebuilds an action. Unknown kinds and strategies are kept as
// data so later stages (replay validation, code generation) can report them.
func FromRecord(r Record) Action {
	a := Action{
		Kind:        Kind(strings.ToLower(r.Action)),
		URL:         r.URL,
		WaitSeconds: r.WaitSeconds,
		Timestamp:   r.Timestamp,
	}
	if r.LocatorType != "" || r.LocatorValue != "" {
		a.Locator = Locator{Strategy: strategyOf(r.LocatorType), Value: r.LocatorValue}
	}
	if r.Result != nil {
		a.Result = *r.Result
		a.HasResult = true
	}
	if r.Parameters != nil {
		a.Params.Text = r.Parameters.Text
		a.Params.Attribute = r.Parameters.Attribute
		for _, k := range r.Parameters.Keys {
			a.Params.Keys = append(a.Params.Keys, SpecialKey(strings.ToUpper(k)))
		}
		if r.Parameters.TargetLocatorType != "" || r.Parameters.TargetLocatorValue != "" {
			a.Params.Target = Locator{
				Strategy: strategyOf(r.Parameters.TargetLocatorType),
				Value:    r.Parameters.TargetLocatorValue,
			}
		}
	}
	return a
}

func strategyOf(s string) Strategy {
	if st, err := ParseStrategy(s); err == nil {
		return st
	}
	return Strategy(strings.ToLower(s))
}
