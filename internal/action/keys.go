package action

import (
	"fmt"
	"strings"
)

// SpecialKey is a symbolic non-printing key appended after send_keys text
type SpecialKey string

const (
	KeyBackspace  SpecialKey = "BACKSPACE"
	KeyTab        SpecialKey = "TAB"
	KeyReturn     SpecialKey = "RETURN"
	KeyEnter      SpecialKey = "ENTER"
	KeyEscape     SpecialKey = "ESCAPE"
	KeySpace      SpecialKey = "SPACE"
	KeyPageUp     SpecialKey = "PAGE_UP"
	KeyPageDown   SpecialKey = "PAGE_DOWN"
	KeyEnd        SpecialKey = "END"
	KeyHome       SpecialKey = "HOME"
	KeyArrowLeft  SpecialKey = "ARROW_LEFT"
	KeyArrowUp    SpecialKey = "ARROW_UP"
	KeyArrowRight SpecialKey = "ARROW_RIGHT"
	KeyArrowDown  SpecialKey = "ARROW_DOWN"
	KeyDelete     SpecialKey = "DELETE"
)

// SpecialKeys lists every key in WebDriver code order
var SpecialKeys = []SpecialKey{
	KeyBackspace, KeyTab, KeyReturn, KeyEnter, KeyEscape, KeySpace, KeyPageUp, KeyPageDown,
	KeyEnd, KeyHome, KeyArrowLeft, KeyArrowUp, KeyArrowRight, KeyArrowDown, KeyDelete,
}

// WebDriver key codes live in the Unicode private use area.
var keyCodes = map[SpecialKey]rune{
	KeyBackspace:  '\ue003',
	KeyTab:        '\ue004',
	KeyReturn:     '\ue006',
	KeyEnter:      '\ue007',
	KeyEscape:     '\ue00c',
	KeySpace:      '\ue00d',
	KeyPageUp:     '\ue00e',
	KeyPageDown:   '\ue00f',
	KeyEnd:        '\ue010',
	KeyHome:       '\ue011',
	KeyArrowLeft:  '\ue012',
	KeyArrowUp:    '\ue013',
	KeyArrowRight: '\ue014',
	KeyArrowDown:  '\ue015',
	KeyDelete:     '\ue017',
}

var keysByCode = func() map[rune]SpecialKey {
	m := make(map[rune]SpecialKey, len(keyCodes))
	for k, c := range keyCodes {
		m[c] = k
	}
	return m
}()

// ParseSpecialKey normalises a key name (case-insensitive)
func ParseSpecialKey(s string) (SpecialKey, error) {
	k := SpecialKey(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := keyCodes[k]; !ok {
		return "", fmt.Errorf("%w: unknown special key %q", ErrInvalidInput, s)
	}
	return k, nil
}

// Code returns the WebDriver code point for the key
func (k SpecialKey) Code() (rune, bool) {
	c, ok := keyCodes[k]
	return c, ok
}

// KeyForCode is the inverse of Code
func KeyForCode(r rune) (SpecialKey, bool) {
	k, ok := keysByCode[r]
	return k, ok
}

// ComposeKeys concatenates literal text with the code of each key in order.
func ComposeKeys(text string, keys []SpecialKey) (string, error) {
	var b strings.Builder
	b.WriteString(text)
	for _, k := range keys {
		c, ok := k.Code()
		if !ok {
			return "", fmt.Errorf("%w: unknown special key %q", ErrInvalidInput, k)
		}
		b.WriteRune(c)
	}
	return b.String(), nil
}
