package action

import (
	"fmt"
	"strings"
)

// QueryLanguage is the selector dialect a Query is written in
type QueryLanguage int

const (
	CSS QueryLanguage = iota
	XPath
)

// Query is a locator lowered to a selector a CDP driver can evaluate
type Query struct {
	Language QueryLanguage
	Expr     string
}

// Query lowers the locator. Attribute-based strategies become quoted CSS
// attribute selectors so the value never needs identifier escaping; link
// text strategies become XPath over anchor text.
func (l Locator) Query() (Query, error) {
	switch l.Strategy {
	case ByID:
		return Query{CSS, cssAttr("id", "=", l.Value)}, nil
	case ByName:
		return Query{CSS, cssAttr("name", "=", l.Value)}, nil
	case ByClassName:
		return Query{CSS, cssAttr("class", "~=", l.Value)}, nil
	case ByTagName, ByCSSSelector:
		return Query{CSS, l.Value}, nil
	case ByXPath:
		return Query{XPath, l.Value}, nil
	case ByLinkText:
		return Query{XPath, "//a[normalize-space(.)=" + XPathLiteral(strings.TrimSpace(l.Value)) + "]"}, nil
	case ByPartialLinkText:
		return Query{XPath, "//a[contains(normalize-space(.), " + XPathLiteral(strings.TrimSpace(l.Value)) + ")]"}, nil
	default:
		return Query{}, fmt.Errorf("%w: unsupported locator strategy %q", ErrInvalidInput, l.Strategy)
	}
}

func cssAttr(name, op, value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return "[" + name + op + `"` + r.Replace(value) + `"]`
}

// XPathLiteral quotes s for XPath 1.0, which has no escape sequences:
// strings holding both quote kinds are built with concat().
func XPathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if p != "" {
			quoted = append(quoted, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
