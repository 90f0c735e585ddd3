package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sela-labs/hattrick-mcp/pkg/browser"
)

type scrapeInput struct {
	URL string `json:"url" jsonschema:"full URL or site-relative path to read"`
}

type scrapeOutput struct {
	URL    string          `json:"url"`
	Text   string          `json:"text"`
	Links  []browser.Link  `json:"links"`
	Tables []browser.Table `json:"tables"`
	Error  string          `json:"error,omitempty"`
}

func (t *Toolbox) handleScrape(ctx context.Context, req *mcp.CallToolRequest, input scrapeInput) (*mcp.CallToolResult, scrapeOutput, error) {
	if input.URL == "" {
		return errorResult("url is required"), scrapeOutput{}, nil
	}

	snap := t.runner.RunWithPage(ctx, input.URL, nil)

	return nil, scrapeOutput{
		URL:    snap.FinalURL,
		Text:   browser.Truncate(snap.BodyText, scrapeTextLimit),
		Links:  capLinks(snap.Links, scrapeLinkLimit),
		Tables: snap.Tables,
		Error:  errorString(snap.Error),
	}, nil
}
