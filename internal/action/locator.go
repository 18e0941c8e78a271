package action

import (
	"fmt"
	"strings"
)

// Strategy identifies how a locator value is interpreted
type Strategy string

const (
	ByID              Strategy = "id"
	ByClassName       Strategy = "class_name"
	ByName            Strategy = "name"
	ByTagName         Strategy = "tag_name"
	ByXPath           Strategy = "xpath"
	ByCSSSelector     Strategy = "css_selector"
	ByLinkText        Strategy = "link_text"
	ByPartialLinkText Strategy = "partial_link_text"
)

// Strategies lists every supported strategy in display order
var Strategies = []Strategy{
	ByID, ByClassName, ByName, ByTagName, ByXPath, ByCSSSelector, ByLinkText, ByPartialLinkText,
}

// ParseStrategy accepts both the lower-case names and the upper-case
// Selenium spellings (ID, CSS_SELECTOR, ...).
func ParseStrategy(s string) (Strategy, error) {
	candidate := Strategy(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Strategies {
		if candidate == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported locator strategy %q", ErrInvalidInput, s)
}

// Selenium returns the By.* constant name for the strategy
func (s Strategy) Selenium() string {
	return strings.ToUpper(string(s))
}

// Locator is a (strategy, value) pair identifying elements in a document
type Locator struct {
	Strategy Strategy `json:"strategy"`
	Value    string   `json:"value"`
}

// NewLocator validates the strategy and value.
func NewLocator(strategy, value string) (Locator, error) {
	st, err := ParseStrategy(strategy)
	if err != nil {
		return Locator{}, err
	}
	if strings.TrimSpace(value) == "" {
		return Locator{}, fmt.Errorf("%w: locator value is empty (strategy %s)", ErrInvalidInput, st)
	}
	return Locator{Strategy: st, Value: value}, nil
}

// IsZero reports whether the locator was never set
func (l Locator) IsZero() bool {
	return l.Strategy == "" && l.Value == ""
}

// Validate re-checks a locator built without NewLocator (e.g. decoded from JSON)
func (l Locator) Validate() error {
	_, err := NewLocator(string(l.Strategy), l.Value)
	return err
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}
