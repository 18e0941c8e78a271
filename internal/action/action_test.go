package action

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocator(t *testing.T) {
	t.Run("empty value fails for every strategy", func(t *testing.T) {
		for _, st := range Strategies {
			_, err := NewLocator(string(st), "")
			assert.ErrorIs(t, err, ErrInvalidInput, "strategy %s", st)

			_, err = NewLocator(string(st), "   ")
			assert.ErrorIs(t, err, ErrInvalidInput, "strategy %s (blank)", st)
		}
	})

	t.Run("unsupported strategy fails at construction", func(t *testing.T) {
		_, err := NewLocator("accessibility_id", "x")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("selenium spelling is accepted", func(t *testing.T) {
		loc, err := NewLocator("CSS_SELECTOR", "div > a")
		require.NoError(t, err)
		assert.Equal(t, ByCSSSelector, loc.Strategy)
		assert.Equal(t, "CSS_SELECTOR", loc.Strategy.Selenium())
	})
}

func TestRequestValidate(t *testing.T) {
	loc, err := NewLocator("id", "q")
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"click ok", NewRequest(Click, loc, Params{}), nil},
		{"navigate without url", NewNavigate("", 0), ErrInvalidParameters},
		{"navigate negative wait", NewNavigate("https://example.com", -1), ErrInvalidParameters},
		{"attribute missing", NewRequest(GetAttribute, loc, Params{}), ErrInvalidParameters},
		{"drag without target", NewRequest(DragAndDrop, loc, Params{}), ErrInvalidParameters},
		{"drag bad target", NewRequest(DragAndDrop, loc, Params{Target: Locator{Strategy: "bogus", Value: "x"}}), ErrInvalidInput},
		{"unknown key", NewRequest(SendKeys, loc, Params{Text: "a", Keys: []SpecialKey{"F13"}}), ErrInvalidInput},
		{"missing locator", Request{Kind: Click}, ErrInvalidInput},
		{"unknown kind", Request{Kind: "scroll", Locator: loc}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestComposeKeys(t *testing.T) {
	s, err := ComposeKeys("abc", []SpecialKey{KeyEnter, KeyTab})
	require.NoError(t, err)
	assert.Equal(t, "abc\ue007\ue004", s)

	k, ok := KeyForCode('\ue007')
	assert.True(t, ok)
	assert.Equal(t, KeyEnter, k)

	_, err = ParseSpecialKey("hyper")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCapture(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 30, 5, 999, time.UTC)

	nav := Capture(NewNavigate("https://example.com", 3), ResultNavigate, at)
	assert.Equal(t, "2026-10-19 09:30:05", nav.Timestamp)
	assert.False(t, nav.HasResult, "navigate entries carry no result")

	loc, _ := NewLocator("name", "q")
	keys := []SpecialKey{KeyEnter}
	typed := Capture(NewRequest(SendKeys, loc, Params{Text: "abc", Keys: keys}), "abc", at)
	keys[0] = KeyTab
	assert.Equal(t, []SpecialKey{KeyEnter}, typed.Params.Keys, "captured action must not alias the request")
	assert.Equal(t, "abc", typed.Result)
}

func TestRecordRoundTrip(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	src, _ := NewLocator("xpath", `//a[@title="x"]`)
	dst, _ := NewLocator("id", "bin")

	actions := []Action{
		Capture(NewNavigate("https://example.com", 2), ResultNavigate, at),
		Capture(NewRequest(SendKeys, src, Params{Text: "hi", Keys: []SpecialKey{KeyEnter}}), "hi", at),
		Capture(NewRequest(GetAttribute, src, Params{Attribute: "href"}), "", at),
		Capture(NewRequest(DragAndDrop, src, Params{Target: dst}), ResultDragAndDrop, at),
	}

	for _, a := range actions {
		data, err := json.Marshal(ToRecord(a))
		require.NoError(t, err)

		var rec Record
		require.NoError(t, json.Unmarshal(data, &rec))
		assert.Equal(t, a, FromRecord(rec), string(data))
	}
}

func TestRecordFieldAbsence(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := json.Marshal(ToRecord(Capture(NewNavigate("https://example.com", 0), ResultNavigate, at)))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "navigate", raw["action"])
	assert.Equal(t, "https://example.com", raw["url"])
	for _, key := range []string{"locator_type", "locator_value", "result", "parameters", "wait_seconds"} {
		assert.NotContains(t, raw, key)
	}
}

func TestRecordLegacyParameters(t *testing.T) {
	legacy := `{"action": "send_keys", "locator_type": "NAME", "locator_value": "q",
		"parameters": "hello", "result": "Sent keys: hello", "timestamp": "2024-05-01 10:00:00"}`

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(legacy), &rec))
	a := FromRecord(rec)
	assert.Equal(t, SendKeys, a.Kind)
	assert.Equal(t, ByName, a.Locator.Strategy)
	assert.Equal(t, "hello", a.Params.Text)
	assert.NoError(t, a.Request().Validate())
}
