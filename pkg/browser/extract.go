package browser

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// extractLinks pulls up to MaxLinks outbound hyperlinks from a page's HTML,
// resolving hrefs against the final navigated URL. Script pseudo-links and
// entries with no visible text are excluded.
func extractLinks(root *html.Node, base *url.URL) []Link {
	var links []Link

	walkElements(root, "a", func(n *html.Node) bool {
		if len(links) >= MaxLinks {
			return false
		}

		href := attrValue(n, "href")
		if href == "" || strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "javascript:") {
			return true
		}

		text := collapseText(nodeText(n))
		if text == "" {
			return true
		}
		if len(text) > MaxLinkText {
			text = text[:MaxLinkText]
		}

		links = append(links, Link{Href: resolveHref(base, href), Text: text})
		return true
	})

	return links
}

// extractTables pulls up to MaxTables rendered tables as rows of trimmed cell
// text, dropping rows whose cells are all empty.
func extractTables(root *html.Node) []Table {
	var tables []Table

	walkElements(root, "table", func(n *html.Node) bool {
		if len(tables) >= MaxTables {
			return false
		}

		var rows [][]string
		walkElements(n, "tr", func(tr *html.Node) bool {
			var cells []string
			hasContent := false
			walkCells(tr, func(cell *html.Node) {
				text := collapseText(nodeText(cell))
				if text != "" {
					hasContent = true
				}
				cells = append(cells, text)
			})
			if len(cells) > 0 && hasContent {
				rows = append(rows, cells)
			}
			return true
		})

		if len(rows) > 0 {
			tables = append(tables, Table{Rows: rows})
		}
		return true
	})

	return tables
}

// parseHTML is a thin wrapper kept separate so extraction is testable against
// fixture documents without a browser.
func parseHTML(content string) (*html.Node, error) {
	return html.Parse(strings.NewReader(content))
}

// walkElements visits every element named tag under root in document order.
// The visitor returns false to stop the walk.
func walkElements(root *html.Node, tag string, visit func(*html.Node) bool) {
	stopped := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if stopped {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag {
			if !visit(n) {
				stopped = true
				return
			}
			// Tables and anchors do not meaningfully nest for our purposes;
			// still descend so malformed markup is not silently skipped.
		}
		for c := n.FirstChild; c != nil && !stopped; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

// walkCells visits direct and nested td/th cells of a table row, skipping
// cells that belong to a nested table's rows.
func walkCells(tr *html.Node, visit func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "td", "th":
				visit(n)
				return
			case "table":
				if n != tr {
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
}

// nodeText concatenates the text content beneath n, ignoring script and
// style subtrees.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			b.WriteString(" ")
		}
	}
	walk(n)
	return b.String()
}

// collapseText trims and collapses internal whitespace runs to single spaces.
func collapseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// resolveHref resolves a possibly-relative href against the page URL. An
// unparsable href is returned as-is; callers treat hrefs as opaque.
func resolveHref(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
