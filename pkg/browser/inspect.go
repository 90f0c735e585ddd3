package browser

import (
	"encoding/json"
)

// inspectScript walks the DOM and collects raw descriptors for every
// interactive control, grouped the way callers think about them. Selector
// computation, deduplication, and visibility filtering happen Go-side (see
// refineElements) so they can be unit-tested against fixture descriptors.
const inspectScript = `() => {
	const out = [];

	function describe(el, category) {
		const rect = el.getBoundingClientRect();
		const path = [];
		let cur = el;
		while (cur && cur !== document.body) {
			const parent = cur.parentElement;
			let index = 0;
			if (parent) {
				const siblings = Array.from(parent.children).filter(c => c.tagName === cur.tagName);
				if (siblings.length > 1) index = siblings.indexOf(cur) + 1;
			}
			path.unshift({
				tag: cur.tagName.toLowerCase(),
				id: cur.id || '',
				classes: (typeof cur.className === 'string')
					? cur.className.trim().split(/\s+/).filter(Boolean).slice(0, 2)
					: [],
				index: index
			});
			if (cur.id) break;
			cur = parent;
		}
		return {
			category: category,
			tag: el.tagName.toLowerCase(),
			type: el.type || '',
			id: el.id || '',
			name: el.name || '',
			value: el.value || '',
			text: '',
			href: el.href || '',
			disabled: el.disabled || false,
			width: rect.width,
			height: rect.height,
			path: path
		};
	}

	document.querySelectorAll('button, input[type="button"], input[type="submit"], [role="button"]').forEach(el => {
		const d = describe(el, 'button');
		d.text = (el.innerText || el.value || el.title || el.ariaLabel || '').trim().substring(0, 80);
		out.push(d);
	});

	document.querySelectorAll('input[type="text"], input[type="email"], input[type="number"], input[type="search"], input[type="tel"], input[type="url"], input:not([type]), textarea').forEach(el => {
		if (el.type === 'hidden') return;
		const d = describe(el, 'input');
		if (!d.type) d.type = 'text';
		d.text = el.placeholder || el.ariaLabel || '';
		out.push(d);
	});

	document.querySelectorAll('select').forEach(el => {
		const d = describe(el, 'dropdown');
		d.type = 'select';
		d.text = el.ariaLabel || el.name || '';
		d.options = Array.from(el.options).map(o => ({
			value: o.value,
			text: o.text.trim(),
			selected: o.selected
		}));
		out.push(d);
	});

	document.querySelectorAll('input[type="checkbox"], input[type="radio"]').forEach(el => {
		const d = describe(el, 'checkbox');
		let label = '';
		if (el.id) {
			const lbl = document.querySelector('label[for="' + el.id + '"]');
			if (lbl) label = lbl.innerText.trim();
		}
		if (!label && el.parentElement) label = el.parentElement.innerText.trim().substring(0, 80);
		d.text = label;
		d.checked = el.checked;
		out.push(d);
	});

	document.querySelectorAll('a[href*="javascript:"], a[onclick], a.btn, a[role="button"]').forEach(el => {
		const d = describe(el, 'action-link');
		d.type = 'link-action';
		d.text = (el.innerText || el.title || '').trim().substring(0, 80);
		out.push(d);
	});

	return out;
}`

// rawElement is the wire form produced by inspectScript.
type rawElement struct {
	Category string         `json:"category"`
	Tag      string         `json:"tag"`
	Type     string         `json:"type"`
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Value    string         `json:"value"`
	Text     string         `json:"text"`
	Href     string         `json:"href"`
	Checked  *bool          `json:"checked"`
	Disabled bool           `json:"disabled"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Options  []SelectOption `json:"options"`
	Path     []pathSegment  `json:"path"`
}

// InspectionQuery is the read-only Interaction variant: it discovers
// interactive controls on the current page without mutating it.
type InspectionQuery struct {
	Elements []InteractiveElement
}

// Run implements Interaction.
func (q *InspectionQuery) Run(d Driver) {
	value, err := d.Evaluate(inspectScript)
	if err != nil {
		// Inspection is best-effort: an evaluation failure simply yields no
		// elements and the snapshot's page text still tells the caller what
		// page they are on.
		q.Elements = nil
		return
	}

	raw, err := decodeRawElements(value)
	if err != nil {
		q.Elements = nil
		return
	}
	q.Elements = refineElements(raw)
}

// decodeRawElements converts the playwright evaluation result (generic maps
// and slices) into typed descriptors via a JSON round-trip.
func decodeRawElements(value interface{}) ([]rawElement, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var raw []rawElement
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// refineElements computes selectors, deduplicates (first occurrence wins),
// and drops controls with no rendered size. Pure: tested against fixture
// descriptors without a browser.
func refineElements(raw []rawElement) []InteractiveElement {
	seen := make(map[string]bool, len(raw))
	out := make([]InteractiveElement, 0, len(raw))

	for _, r := range raw {
		selector := buildSelector(r.Tag, r.ID, r.Name, r.Path)
		if selector == "" || seen[selector] {
			continue
		}
		seen[selector] = true

		if r.Width <= 0 || r.Height <= 0 {
			continue
		}

		el := InteractiveElement{
			Selector: selector,
			Tag:      r.Tag,
			Type:     r.Type,
			Text:     r.Text,
			Value:    r.Value,
			Name:     r.Name,
			ID:       r.ID,
			Checked:  r.Checked,
			Visible:  true,
			Disabled: r.Disabled,
			Category: r.Category,
			Options:  r.Options,
		}
		if r.Category == CategoryActionLink {
			el.Href = r.Href
		}
		out = append(out, el)
	}
	return out
}
