package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/stepforge/internal/action"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "   ", nil},
		{"plain", "click id  submit", []string{"click", "id", "submit"}},
		{"double quoted", `send_keys name q "hello world"`, []string{"send_keys", "name", "q", "hello world"}},
		{"empty quoted", `send_keys id q "" ENTER`, []string{"send_keys", "id", "q", "", "ENTER"}},
		{"escapes", `x "say \"hi\" \\ \n"`, []string{"x", `say "hi" \ \n`}},
		{"single quoted", `click xpath '//a[@title="Sign in"]'`, []string{"click", "xpath", `//a[@title="Sign in"]`}},
		{"inner quotes are literal", `click xpath //button[text()='Go']`, []string{"click", "xpath", "//button[text()='Go']"}},
		{"tabs", "hover\tcss_selector\t.menu", []string{"hover", "css_selector", ".menu"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitArgs(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := splitArgs(`click id "open`)
	assert.ErrorIs(t, err, errUnterminatedQuote)
}

func TestQuoteArgRoundTrip(t *testing.T) {
	for _, s := range []string{"plain", "", "two words", `"leading`, "'leading", `back\slash`, `mid"quote`, `tab	in`, `a \" b`} {
		got, err := splitArgs(quoteArg(s))
		require.NoError(t, err, s)
		assert.Equal(t, []string{s}, got, s)
	}
	assert.Equal(t, "plain", quoteArg("plain"))
}

func TestFormatCommandRoundTrip(t *testing.T) {
	loc := func(strategy, value string) action.Locator {
		l, err := action.NewLocator(strategy, value)
		require.NoError(t, err)
		return l
	}
	reqs := []action.Request{
		action.NewNavigate("https://example.com/?q=a b", 3),
		action.NewRequest(action.Click, loc("xpath", "//a[text()='Sign in']"), action.Params{}),
		action.NewRequest(action.SendKeys, loc("name", "q"), action.Params{Text: "go rod", Keys: []action.SpecialKey{action.KeyEnter}}),
		action.NewRequest(action.SendKeys, loc("id", "q"), action.Params{Keys: []action.SpecialKey{action.KeyTab}}),
		action.NewRequest(action.SendKeys, loc("id", "q"), action.Params{}),
		action.NewRequest(action.GetAttribute, loc("id", "go"), action.Params{Attribute: "href"}),
		action.NewRequest(action.DragAndDrop, loc("id", "a"), action.Params{Target: loc("css_selector", "#b .slot")}),
		action.NewRequest(action.Hover, loc("class_name", "menu"), action.Params{}),
	}
	for _, req := range reqs {
		line := formatCommand(req)
		args, err := splitArgs(line)
		require.NoError(t, err, line)

		kind, err := action.ParseKind(args[0])
		require.NoError(t, err, line)
		var got action.Request
		if kind == action.Navigate {
			got, err = parseNavigate(args[1:], 0)
		} else {
			got, err = parseAction(kind, args[1:])
		}
		require.NoError(t, err, line)
		assert.Equal(t, req, got, line)
	}
}
