package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sela-labs/hattrick-mcp/pkg/browser"
)

// Shortcut readers: fixed club pages addressed via the configured team and
// league identifiers, each with its own link filter and response budget.

type shortcutInput struct{}

type shortcutOutput struct {
	TeamID   string          `json:"team_id,omitempty"`
	LeagueID string          `json:"league_id,omitempty"`
	Text     string          `json:"text"`
	Links    []browser.Link  `json:"links,omitempty"`
	Tables   []browser.Table `json:"tables"`
	Error    string          `json:"error,omitempty"`
}

func (t *Toolbox) registerShortcuts(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "hattrick_get_team",
		Description: "Get team overview: name, league, rating, stadium, manager info.",
	}, t.handleGetTeam)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hattrick_get_players",
		Description: "Get the full player roster: names, ages, skills, TSI, salary, specialty.",
	}, t.handleGetPlayers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hattrick_get_matches",
		Description: "Get upcoming and recent match fixtures.",
	}, t.handleGetMatches)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hattrick_get_training",
		Description: "Get current training type, intensity, and player training status.",
	}, t.handleGetTraining)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hattrick_get_economy",
		Description: "Get club finances: cash, weekly income and expenses, sponsors, arena.",
	}, t.handleGetEconomy)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hattrick_get_league",
		Description: "Get the league table for the team's current division.",
	}, t.handleGetLeague)
}

func (t *Toolbox) handleGetTeam(ctx context.Context, req *mcp.CallToolRequest, input shortcutInput) (*mcp.CallToolResult, shortcutOutput, error) {
	snap := t.runner.RunWithPage(ctx, fmt.Sprintf("/en/Club/?TeamID=%s", t.cfg.TeamID), nil)
	return nil, shortcutOutput{
		TeamID: t.cfg.TeamID,
		Text:   browser.Truncate(snap.BodyText, shortcutTextLimit),
		Links:  filterLinks(snap.Links, "TeamID", teamLinkLimit),
		Tables: capTables(snap.Tables, shortcutTableCap),
		Error:  errorString(snap.Error),
	}, nil
}

func (t *Toolbox) handleGetPlayers(ctx context.Context, req *mcp.CallToolRequest, input shortcutInput) (*mcp.CallToolResult, shortcutOutput, error) {
	snap := t.runner.RunWithPage(ctx, fmt.Sprintf("/en/Club/Players/?TeamID=%s", t.cfg.TeamID), nil)
	return nil, shortcutOutput{
		TeamID: t.cfg.TeamID,
		Text:   browser.Truncate(snap.BodyText, playersTextLimit),
		Links:  filterLinks(snap.Links, "playerID", playerLinkLimit),
		Tables: snap.Tables,
		Error:  errorString(snap.Error),
	}, nil
}

func (t *Toolbox) handleGetMatches(ctx context.Context, req *mcp.CallToolRequest, input shortcutInput) (*mcp.CallToolResult, shortcutOutput, error) {
	snap := t.runner.RunWithPage(ctx, fmt.Sprintf("/en/Club/Matches/?TeamID=%s", t.cfg.TeamID), nil)
	return nil, shortcutOutput{
		TeamID: t.cfg.TeamID,
		Text:   browser.Truncate(snap.BodyText, shortcutTextLimit),
		Links:  filterLinks(snap.Links, "matchID", matchLinkLimit),
		Tables: capTables(snap.Tables, shortcutTableCap),
		Error:  errorString(snap.Error),
	}, nil
}

func (t *Toolbox) handleGetTraining(ctx context.Context, req *mcp.CallToolRequest, input shortcutInput) (*mcp.CallToolResult, shortcutOutput, error) {
	snap := t.runner.RunWithPage(ctx, "/en/Club/Training/", nil)
	return nil, shortcutOutput{
		Text:   browser.Truncate(snap.BodyText, shortcutTextLimit),
		Tables: capTables(snap.Tables, shortcutTableCap),
		Error:  errorString(snap.Error),
	}, nil
}

func (t *Toolbox) handleGetEconomy(ctx context.Context, req *mcp.CallToolRequest, input shortcutInput) (*mcp.CallToolResult, shortcutOutput, error) {
	snap := t.runner.RunWithPage(ctx, "/en/Club/Finances/", nil)
	return nil, shortcutOutput{
		Text:   browser.Truncate(snap.BodyText, shortcutTextLimit),
		Tables: capTables(snap.Tables, shortcutTableCap),
		Error:  errorString(snap.Error),
	}, nil
}

func (t *Toolbox) handleGetLeague(ctx context.Context, req *mcp.CallToolRequest, input shortcutInput) (*mcp.CallToolResult, shortcutOutput, error) {
	snap := t.runner.RunWithPage(ctx, fmt.Sprintf("/en/World/Series/?LeagueLevelUnitID=%s", t.cfg.LeagueID), nil)
	return nil, shortcutOutput{
		LeagueID: t.cfg.LeagueID,
		Text:     browser.Truncate(snap.BodyText, shortcutTextLimit),
		Tables:   capTables(snap.Tables, shortcutTableCap),
		Error:    errorString(snap.Error),
	}, nil
}
