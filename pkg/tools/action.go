package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sela-labs/hattrick-mcp/pkg/browser"
)

type actionInput struct {
	URL     string `json:"url" jsonschema:"page URL or site-relative path to act on"`
	Actions string `json:"actions" jsonschema:"JSON array of action steps, e.g. [{\"type\":\"click\",\"selector\":\"#save\"}]"`
}

type actionOutput struct {
	URL     string                 `json:"url"`
	Actions []browser.ActionResult `json:"actions"`
	Text    string                 `json:"text"`
	Error   string                 `json:"error,omitempty"`
}

// handleAction parses the step list up front so malformed JSON is reported
// without spending a browser launch, then runs the sequence and returns the
// per-step outcomes with the post-action page text for verification.
func (t *Toolbox) handleAction(ctx context.Context, req *mcp.CallToolRequest, input actionInput) (*mcp.CallToolResult, actionOutput, error) {
	if input.URL == "" {
		return errorResult("url is required"), actionOutput{}, nil
	}

	steps, diag := browser.ParseActions(input.Actions)
	if diag != nil {
		return nil, actionOutput{Error: diag.Error()}, nil
	}

	seq := &browser.ActionSequence{Steps: steps}
	snap := t.runner.RunWithPage(ctx, input.URL, seq)

	t.log.Debugf("action tool ran %d steps against %s", len(steps), snap.FinalURL)

	return nil, actionOutput{
		URL:     snap.FinalURL,
		Actions: seq.Results,
		Text:    browser.Truncate(snap.BodyText, actionTextLimit),
		Error:   errorString(snap.Error),
	}, nil
}
