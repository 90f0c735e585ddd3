package tools

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sela-labs/hattrick-mcp/pkg/browser"
)

const dashboardPath = "/en/MyHattrick/Dashboard.aspx"

var teamIDPattern = regexp.MustCompile(`TeamID=(\d+)`)

type loginInput struct{}

type loginOutput struct {
	Status string `json:"status"`
	TeamID string `json:"team_id,omitempty"`
	URL    string `json:"url"`
	Text   string `json:"text"`
	Error  string `json:"error,omitempty"`
}

// handleLogin forces the auth path by targeting the dashboard, then pulls the
// team ID out of the landed page's links. The configured team ID is the
// fallback when no link carries one.
func (t *Toolbox) handleLogin(ctx context.Context, req *mcp.CallToolRequest, input loginInput) (*mcp.CallToolResult, loginOutput, error) {
	if !t.cfg.HasCredentials() {
		return nil, loginOutput{
			Status: "error",
			Error:  "HATTRICK_USERNAME and HATTRICK_PASSWORD must be configured",
		}, nil
	}

	snap := t.runner.RunWithPage(ctx, dashboardPath, nil)

	teamID := t.cfg.TeamID
	for _, link := range snap.Links {
		if m := teamIDPattern.FindStringSubmatch(link.Href); m != nil {
			teamID = m[1]
			break
		}
	}

	status := "logged_in"
	if snap.Error != nil {
		status = "error"
	}
	t.log.Infof("login tool finished: status=%s team_id=%s", status, teamID)

	return nil, loginOutput{
		Status: status,
		TeamID: teamID,
		URL:    snap.FinalURL,
		Text:   browser.Truncate(snap.BodyText, loginTextLimit),
		Error:  errorString(snap.Error),
	}, nil
}
