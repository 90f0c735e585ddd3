package browser

import (
	"fmt"
	"strings"
)

// pathSegment describes one ancestor on the way from an element up to the
// document body, as captured by the inspection script.
type pathSegment struct {
	Tag     string   `json:"tag"`
	ID      string   `json:"id"`
	Classes []string `json:"classes"`
	// Index is the 1-based nth-of-type position among same-tag siblings, or 0
	// when the element is the only one of its tag and needs no disambiguation.
	Index int `json:"index"`
}

// buildSelector computes a best-effort stable selector for an element:
// prefer the id, then the name attribute, then a structural path composed
// from the element up to the body (stopping early at the nearest ancestor
// with an id).
func buildSelector(tag, id, name string, path []pathSegment) string {
	if id != "" {
		return "#" + cssEscape(id)
	}
	if name != "" {
		return fmt.Sprintf("%s[name=%q]", strings.ToLower(tag), name)
	}
	return structuralSelector(path)
}

// structuralSelector joins path segments (root-most first) into a child
// combinator chain. A segment with an id anchors the chain and everything
// above it is dropped.
func structuralSelector(path []pathSegment) string {
	var parts []string
	for _, seg := range path {
		if seg.ID != "" {
			// Anchor: discard anything less specific collected so far.
			parts = []string{"#" + cssEscape(seg.ID)}
			continue
		}
		part := strings.ToLower(seg.Tag)
		for i, class := range seg.Classes {
			if i >= 2 {
				break
			}
			part += "." + cssEscape(class)
		}
		if seg.Index > 0 {
			part += fmt.Sprintf(":nth-of-type(%d)", seg.Index)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " > ")
}

// cssEscape escapes an identifier for use in a CSS selector, covering the
// cases CSS.escape handles for real-world ids and class names: a leading
// digit becomes a unicode escape and anything outside [A-Za-z0-9_-] is
// backslash-escaped.
func cssEscape(ident string) string {
	if ident == "" {
		return ident
	}

	var b strings.Builder
	for i, r := range ident {
		switch {
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteString(fmt.Sprintf("\\3%c ", r))
			} else {
				b.WriteRune(r)
			}
		case r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f:
			b.WriteRune(r)
		default:
			b.WriteRune('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
