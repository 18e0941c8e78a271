package browser

import (
	"context"
	"fmt"

	"github.com/v0xg/stepforge/internal/action"
)

// PageMap is a summary of the interactive parts of the current page,
// used to ground step suggestions.
type PageMap struct {
	URL      string        `json:"url"`
	Title    string        `json:"title"`
	Elements []PageElement `json:"elements"`
}

// PageElement is one interactive element with a locator that resolves it
type PageElement struct {
	Locator     action.Locator `json:"locator"`
	Type        string         `json:"type"` // button, input, link, select, checkbox, radio
	Text        string         `json:"text,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
}

const scanScript = `() => {
	const out = [];
	const seen = new Set();

	function locate(el) {
		if (el.id && document.querySelectorAll('[id="' + CSS.escape(el.id) + '"]').length === 1) {
			return {strategy: 'id', value: el.id};
		}
		if (el.name && document.getElementsByName(el.name).length === 1) {
			return {strategy: 'name', value: el.name};
		}
		const tag = el.tagName.toLowerCase();
		if (tag === 'a') {
			const text = (el.textContent || '').trim();
			if (text && text.length <= 60) return {strategy: 'link_text', value: text};
		}
		const parts = [];
		for (let cur = el; cur && cur.nodeType === 1 && cur !== document.body; cur = cur.parentElement) {
			if (cur.id) { parts.unshift('#' + CSS.escape(cur.id)); break; }
			const idx = Array.from(cur.parentElement ? cur.parentElement.children : []).indexOf(cur) + 1;
			parts.unshift(cur.tagName.toLowerCase() + ':nth-child(' + idx + ')');
		}
		return {strategy: 'css_selector', value: parts.join(' > ') || tag};
	}

	function add(el, type) {
		if (!el.offsetParent) return;
		const loc = locate(el);
		const key = loc.strategy + '=' + loc.value;
		if (seen.has(key)) return;
		seen.add(key);
		out.push({
			strategy: loc.strategy,
			value: loc.value,
			type: type,
			text: (el.textContent || el.value || '').trim().slice(0, 50),
			placeholder: el.placeholder || ''
		});
	}

	document.querySelectorAll('button, [role="button"], input[type="submit"], input[type="button"]').forEach(el => add(el, 'button'));
	document.querySelectorAll('input:not([type="hidden"]):not([type="submit"]):not([type="button"]), textarea').forEach(el => {
		add(el, (el.type === 'checkbox' || el.type === 'radio') ? el.type : 'input');
	});
	document.querySelectorAll('select').forEach(el => add(el, 'select'));
	document.querySelectorAll('a[href]').forEach(el => {
		const href = el.getAttribute('href');
		if (href.startsWith('#') || href.startsWith('javascript:')) return;
		add(el, 'link');
	});
	return {url: window.location.href, title: document.title, elements: out};
}`

// Scan extracts a PageMap from the current page
func (b *Browser) Scan(ctx context.Context) (*PageMap, error) {
	page, err := b.livePage()
	if err != nil {
		return nil, err
	}
	res, err := page.Context(ctx).Eval(scanScript)
	if err != nil {
		return nil, fmt.Errorf("scanning page: %w", sessionError(err))
	}

	v := res.Value
	pm := &PageMap{
		URL:   v.Get("url").Str(),
		Title: v.Get("title").Str(),
	}
	for _, e := range v.Get("elements").Arr() {
		loc, err := action.NewLocator(e.Get("strategy").Str(), e.Get("value").Str())
		if err != nil {
			continue
		}
		pm.Elements = append(pm.Elements, PageElement{
			Locator:     loc,
			Type:        e.Get("type").Str(),
			Text:        e.Get("text").Str(),
			Placeholder: e.Get("placeholder").Str(),
		})
	}
	return pm, nil
}
