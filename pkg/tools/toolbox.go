// Package tools exposes the browser engine as MCP tools over stdio. Each
// tool is a thin recipe: position the engine at a target location, optionally
// run an interaction, then shape the snapshot into a bounded response.
package tools

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sela-labs/hattrick-mcp/pkg/browser"
	"github.com/sela-labs/hattrick-mcp/pkg/config"
	"github.com/sela-labs/hattrick-mcp/pkg/logging"
)

// Per-tool response caps. Page text dominates payload size; each tool keeps
// only as much as its callers typically need.
const (
	loginTextLimit    = 2000
	scrapeTextLimit   = 5000
	inspectTextLimit  = 2000
	actionTextLimit   = 3000
	shortcutTextLimit = 4000
	playersTextLimit  = 6000

	scrapeLinkLimit  = 50
	teamLinkLimit    = 20
	playerLinkLimit  = 30
	matchLinkLimit   = 20
	shortcutTableCap = 5
)

// Runner is the slice of the engine the tool layer depends on. Tests drive
// response assembly with a fake.
type Runner interface {
	RunWithPage(ctx context.Context, target string, interaction browser.Interaction) *browser.PageSnapshot
}

// Toolbox holds the shared dependencies of every tool handler.
type Toolbox struct {
	runner Runner
	cfg    *config.Config
	log    *logging.Logger
}

// NewToolbox builds the tool surface over a runner.
func NewToolbox(runner Runner, cfg *config.Config, log *logging.Logger) *Toolbox {
	return &Toolbox{runner: runner, cfg: cfg, log: log}
}

// Register adds every tool to the server.
func (t *Toolbox) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "hattrick_login",
		Description: "Log in to hattrick.org. Returns dashboard info and the team ID.",
	}, t.handleLogin)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hattrick_scrape",
		Description: "Read any hattrick.org page (auto-login). Returns page text, links, and tables. The url may be a full URL or a path like '/en/Club/Players/?TeamID=...'.",
	}, t.handleScrape)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hattrick_inspect",
		Description: "Discover interactive elements (buttons, inputs, dropdowns, checkboxes, action links) on a hattrick page. Use this before hattrick_action to find selectors.",
	}, t.handleInspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hattrick_action",
		Description: "Perform browser actions on a hattrick page (auto-login). Actions is a JSON array of steps; supported types: click, fill, select, check, uncheck, hover, press, goto, eval, drag, wait. Selectors support CSS and Playwright text selectors. Returns per-step results and the page text after all actions complete.",
	}, t.handleAction)

	t.registerShortcuts(server)
}

// errorResult is the MCP-level refusal for inputs that never reach the
// engine.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// errorString renders a snapshot diagnostic for a response payload, empty when
// there is none.
func errorString(d *browser.Diagnostic) string {
	if d == nil {
		return ""
	}
	return d.Error()
}

// filterLinks keeps links whose href contains pattern, case-insensitive,
// capped at limit.
func filterLinks(links []browser.Link, pattern string, limit int) []browser.Link {
	needle := strings.ToLower(pattern)
	out := make([]browser.Link, 0, limit)
	for _, l := range links {
		if !strings.Contains(strings.ToLower(l.Href), needle) {
			continue
		}
		out = append(out, l)
		if len(out) == limit {
			break
		}
	}
	return out
}

func capLinks(links []browser.Link, limit int) []browser.Link {
	if len(links) > limit {
		return links[:limit]
	}
	return links
}

func capTables(tables []browser.Table, limit int) []browser.Table {
	if len(tables) > limit {
		return tables[:limit]
	}
	return tables
}
