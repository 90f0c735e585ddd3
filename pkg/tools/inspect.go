package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sela-labs/hattrick-mcp/pkg/browser"
)

type inspectInput struct {
	URL string `json:"url" jsonschema:"full URL or site-relative path to inspect"`
}

type inspectOutput struct {
	URL          string                       `json:"url"`
	Elements     []browser.InteractiveElement `json:"elements"`
	ElementCount int                          `json:"element_count"`
	Text         string                       `json:"text"`
	Error        string                       `json:"error,omitempty"`
}

// handleInspect runs the read-only element discovery interaction and returns
// the refined controls alongside a short text excerpt for orientation.
func (t *Toolbox) handleInspect(ctx context.Context, req *mcp.CallToolRequest, input inspectInput) (*mcp.CallToolResult, inspectOutput, error) {
	if input.URL == "" {
		return errorResult("url is required"), inspectOutput{}, nil
	}

	query := &browser.InspectionQuery{}
	snap := t.runner.RunWithPage(ctx, input.URL, query)

	return nil, inspectOutput{
		URL:          snap.FinalURL,
		Elements:     query.Elements,
		ElementCount: len(query.Elements),
		Text:         browser.Truncate(snap.BodyText, inspectTextLimit),
		Error:        errorString(snap.Error),
	}, nil
}
