package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sela-labs/hattrick-mcp/pkg/browser"
	"github.com/sela-labs/hattrick-mcp/pkg/config"
	"github.com/sela-labs/hattrick-mcp/pkg/logging"
)

// fakeRunner records the requested target and interaction and returns a
// canned snapshot.
type fakeRunner struct {
	target      string
	interaction browser.Interaction
	calls       int
	snapshot    *browser.PageSnapshot
	elements    []browser.InteractiveElement
}

func (r *fakeRunner) RunWithPage(_ context.Context, target string, interaction browser.Interaction) *browser.PageSnapshot {
	r.calls++
	r.target = target
	r.interaction = interaction
	if q, ok := interaction.(*browser.InspectionQuery); ok {
		q.Elements = r.elements
	}
	return r.snapshot
}

func dashboardSnapshot() *browser.PageSnapshot {
	return &browser.PageSnapshot{
		FinalURL: "https://www84.hattrick.org/en/MyHattrick/Dashboard.aspx",
		BodyText: "Welcome back, manager",
		Links: []browser.Link{
			{Href: "https://www84.hattrick.org/en/Club/?TeamID=424242", Text: "My Club"},
			{Href: "https://www84.hattrick.org/en/Club/Players/?TeamID=424242", Text: "Players"},
		},
		Tables: []browser.Table{{Rows: [][]string{{"Next match", "Saturday"}}}},
	}
}

func testToolbox(t *testing.T, runner Runner, cfg *config.Config) *Toolbox {
	t.Helper()
	logging.Configure(t.TempDir())
	log, err := logging.NewLogger("tools-test")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	if cfg == nil {
		cfg = &config.Config{
			Username: "manager",
			Password: "secret",
			TeamID:   "1111",
			LeagueID: "5678",
		}
	}
	return NewToolbox(runner, cfg, log)
}

func TestHandleLogin_ExtractsTeamIDFromLinks(t *testing.T) {
	runner := &fakeRunner{snapshot: dashboardSnapshot()}
	tb := testToolbox(t, runner, nil)

	_, out, err := tb.handleLogin(context.Background(), nil, loginInput{})
	require.NoError(t, err)

	assert.Equal(t, dashboardPath, runner.target)
	assert.Equal(t, "logged_in", out.Status)
	assert.Equal(t, "424242", out.TeamID)
	assert.Equal(t, "Welcome back, manager", out.Text)
	assert.Empty(t, out.Error)
}

func TestHandleLogin_FallsBackToConfiguredTeamID(t *testing.T) {
	snap := dashboardSnapshot()
	snap.Links = nil
	runner := &fakeRunner{snapshot: snap}
	tb := testToolbox(t, runner, nil)

	_, out, err := tb.handleLogin(context.Background(), nil, loginInput{})
	require.NoError(t, err)
	assert.Equal(t, "1111", out.TeamID)
}

func TestHandleLogin_WithoutCredentials(t *testing.T) {
	runner := &fakeRunner{snapshot: dashboardSnapshot()}
	tb := testToolbox(t, runner, &config.Config{})

	_, out, err := tb.handleLogin(context.Background(), nil, loginInput{})
	require.NoError(t, err)

	assert.Equal(t, "error", out.Status)
	assert.Contains(t, out.Error, "HATTRICK_USERNAME")
	assert.Zero(t, runner.calls, "no browser work without credentials")
}

func TestHandleLogin_ReportsEngineDiagnostic(t *testing.T) {
	snap := dashboardSnapshot()
	snap.Error = browser.NewDiagnostic(browser.DiagTimeout, "navigation timed out")
	runner := &fakeRunner{snapshot: snap}
	tb := testToolbox(t, runner, nil)

	_, out, err := tb.handleLogin(context.Background(), nil, loginInput{})
	require.NoError(t, err)
	assert.Equal(t, "error", out.Status)
	assert.Contains(t, out.Error, "timeout")
}

func TestHandleScrape(t *testing.T) {
	snap := dashboardSnapshot()
	snap.BodyText = strings.Repeat("x", 6000)
	for i := 0; i < 70; i++ {
		snap.Links = append(snap.Links, browser.Link{Href: "/p", Text: "link"})
	}
	runner := &fakeRunner{snapshot: snap}
	tb := testToolbox(t, runner, nil)

	_, out, err := tb.handleScrape(context.Background(), nil, scrapeInput{URL: "/en/Club/"})
	require.NoError(t, err)

	assert.Equal(t, "/en/Club/", runner.target)
	assert.Nil(t, runner.interaction)
	assert.Contains(t, out.Text, "...(truncated)")
	assert.Len(t, out.Links, scrapeLinkLimit)
	assert.Len(t, out.Tables, 1)
}

func TestHandleScrape_RequiresURL(t *testing.T) {
	runner := &fakeRunner{snapshot: dashboardSnapshot()}
	tb := testToolbox(t, runner, nil)

	res, _, err := tb.handleScrape(context.Background(), nil, scrapeInput{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.IsError)
	assert.Zero(t, runner.calls)
}

func TestHandleInspect(t *testing.T) {
	runner := &fakeRunner{
		snapshot: dashboardSnapshot(),
		elements: []browser.InteractiveElement{
			{Selector: "#save", Tag: "button", Category: browser.CategoryButton},
			{Selector: `select[name="trainingType"]`, Tag: "select", Category: browser.CategoryDropdown},
		},
	}
	tb := testToolbox(t, runner, nil)

	_, out, err := tb.handleInspect(context.Background(), nil, inspectInput{URL: "/en/Club/Training/"})
	require.NoError(t, err)

	require.IsType(t, &browser.InspectionQuery{}, runner.interaction)
	assert.Equal(t, 2, out.ElementCount)
	require.Len(t, out.Elements, 2)
	assert.Equal(t, "#save", out.Elements[0].Selector)
}

func TestHandleAction(t *testing.T) {
	runner := &fakeRunner{snapshot: dashboardSnapshot()}
	tb := testToolbox(t, runner, nil)

	_, out, err := tb.handleAction(context.Background(), nil, actionInput{
		URL:     "/en/Club/Training/",
		Actions: `[{"type":"select","selector":"#trainingType","value":"3"},{"type":"click","selector":"#save"}]`,
	})
	require.NoError(t, err)

	seq, ok := runner.interaction.(*browser.ActionSequence)
	require.True(t, ok)
	require.Len(t, seq.Steps, 2)
	assert.Equal(t, "select", seq.Steps[0].Type)
	assert.Equal(t, dashboardSnapshot().FinalURL, out.URL)
}

func TestHandleAction_MalformedJSONSkipsBrowser(t *testing.T) {
	runner := &fakeRunner{snapshot: dashboardSnapshot()}
	tb := testToolbox(t, runner, nil)

	_, out, err := tb.handleAction(context.Background(), nil, actionInput{
		URL:     "/en/Club/",
		Actions: `[{"type":"click"`,
	})
	require.NoError(t, err)

	assert.Contains(t, out.Error, "invalid actions JSON")
	assert.Zero(t, runner.calls, "malformed input must not reach the engine")
}

func TestShortcuts_TargetsAndFilters(t *testing.T) {
	snap := dashboardSnapshot()
	snap.Links = []browser.Link{
		{Href: "/en/Club/?TeamID=424242", Text: "club"},
		{Href: "/en/Club/Players/Player.aspx?playerID=777", Text: "player"},
		{Href: "/en/Club/Matches/Match.aspx?matchID=888", Text: "match"},
		{Href: "/en/Help/", Text: "help"},
	}
	for i := 0; i < 8; i++ {
		snap.Tables = append(snap.Tables, browser.Table{Rows: [][]string{{"r"}}})
	}

	runner := &fakeRunner{snapshot: snap}
	tb := testToolbox(t, runner, nil)
	ctx := context.Background()

	_, team, err := tb.handleGetTeam(ctx, nil, shortcutInput{})
	require.NoError(t, err)
	assert.Equal(t, "/en/Club/?TeamID=1111", runner.target)
	assert.Equal(t, "1111", team.TeamID)
	require.Len(t, team.Links, 1)
	assert.Contains(t, team.Links[0].Href, "TeamID")
	assert.Len(t, team.Tables, shortcutTableCap)

	_, players, err := tb.handleGetPlayers(ctx, nil, shortcutInput{})
	require.NoError(t, err)
	assert.Equal(t, "/en/Club/Players/?TeamID=1111", runner.target)
	require.Len(t, players.Links, 1)
	assert.Contains(t, players.Links[0].Href, "playerID")
	assert.Len(t, players.Tables, 9, "players keeps all tables")

	_, matches, err := tb.handleGetMatches(ctx, nil, shortcutInput{})
	require.NoError(t, err)
	assert.Equal(t, "/en/Club/Matches/?TeamID=1111", runner.target)
	require.Len(t, matches.Links, 1)
	assert.Contains(t, matches.Links[0].Href, "matchID")

	_, training, err := tb.handleGetTraining(ctx, nil, shortcutInput{})
	require.NoError(t, err)
	assert.Equal(t, "/en/Club/Training/", runner.target)
	assert.Empty(t, training.Links)

	_, _, err = tb.handleGetEconomy(ctx, nil, shortcutInput{})
	require.NoError(t, err)
	assert.Equal(t, "/en/Club/Finances/", runner.target)

	_, league, err := tb.handleGetLeague(ctx, nil, shortcutInput{})
	require.NoError(t, err)
	assert.Equal(t, "/en/World/Series/?LeagueLevelUnitID=5678", runner.target)
	assert.Equal(t, "5678", league.LeagueID)
}

func TestFilterLinks(t *testing.T) {
	links := []browser.Link{
		{Href: "/a?TeamID=1"},
		{Href: "/b?teamid=2"},
		{Href: "/c?playerID=3"},
	}

	out := filterLinks(links, "TeamID", 10)
	assert.Len(t, out, 2, "matching is case-insensitive")

	out = filterLinks(links, "TeamID", 1)
	assert.Len(t, out, 1, "limit is enforced")
}
