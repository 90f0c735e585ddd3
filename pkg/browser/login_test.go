package browser

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sela-labs/hattrick-mcp/pkg/config"
	"github.com/sela-labs/hattrick-mcp/pkg/logging"
)

// fakeAuthPage scripts the page behavior the login state machine observes.
// Navigate lands on land[url] when mapped, otherwise on url itself; each
// LoginVisible call consumes the next scripted answer (the last one sticks).
type fakeAuthPage struct {
	navigations []string
	current     string
	land        map[string]string
	navErr      map[string]error

	loginVisibleSeq []bool
	cookies         []playwright.Cookie
	cookieErr       error

	addedCookies [][]playwright.Cookie
	clickedLogin bool
	filledUser   string
	filledPass   string
	submitted    bool
	authAreaErr  error
}

func (p *fakeAuthPage) AddCookies(cookies []playwright.Cookie) error {
	p.addedCookies = append(p.addedCookies, cookies)
	return nil
}

func (p *fakeAuthPage) Cookies() ([]playwright.Cookie, error) {
	return p.cookies, p.cookieErr
}

func (p *fakeAuthPage) Navigate(url string, _ *playwright.WaitUntilState, _ float64) error {
	p.navigations = append(p.navigations, url)
	if err := p.navErr[url]; err != nil {
		return err
	}
	if landed, ok := p.land[url]; ok {
		p.current = landed
	} else {
		p.current = url
	}
	return nil
}

func (p *fakeAuthPage) CurrentURL() string { return p.current }

func (p *fakeAuthPage) LoginVisible() bool {
	if len(p.loginVisibleSeq) == 0 {
		return false
	}
	v := p.loginVisibleSeq[0]
	if len(p.loginVisibleSeq) > 1 {
		p.loginVisibleSeq = p.loginVisibleSeq[1:]
	}
	return v
}

func (p *fakeAuthPage) ClickLogin() error {
	p.clickedLogin = true
	return nil
}

func (p *fakeAuthPage) FillCredentials(username, password string) error {
	p.filledUser = username
	p.filledPass = password
	return nil
}

func (p *fakeAuthPage) SubmitLogin() error {
	p.submitted = true
	// Mimic the site's post-login redirect to the authenticated host.
	p.current = "https://www84.hattrick.org/en/MyHattrick/Dashboard.aspx"
	return nil
}

func (p *fakeAuthPage) WaitForAuthenticatedArea(_ float64) error { return p.authAreaErr }
func (p *fakeAuthPage) WaitForQuiescence(_ float64) error        { return nil }
func (p *fakeAuthPage) WaitMs(_ float64)                         {}

func testEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	logging.Configure(t.TempDir())
	log, err := logging.NewLogger("test")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	e, err := NewEngine(cfg, log)
	require.NoError(t, err)
	return e
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Username:     "manager",
		Password:     "secret",
		BaseURL:      "https://www.hattrick.org",
		DataDir:      t.TempDir(),
		NavTimeoutMs: 30000,
	}
}

func TestEnsureAuthenticated_ReusesValidSession(t *testing.T) {
	cfg := testConfig(t)
	e := testEngine(t, cfg)
	require.NoError(t, e.store.Save(testCookies(), "https://www84.hattrick.org"))

	p := &fakeAuthPage{loginVisibleSeq: []bool{false}}

	ok, diag := e.ensureAuthenticated(p, "/en/Club/Players/")
	require.Nil(t, diag)
	assert.True(t, ok)

	// Straight to the target on the saved authenticated host, no login flow.
	require.Len(t, p.navigations, 1)
	assert.Equal(t, "https://www84.hattrick.org/en/Club/Players/", p.navigations[0])
	assert.False(t, p.submitted)
	require.Len(t, p.addedCookies, 1)
	assert.Len(t, p.addedCookies[0], 2)
}

func TestEnsureAuthenticated_ReuseIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	e := testEngine(t, cfg)
	require.NoError(t, e.store.Save(testCookies(), "https://www84.hattrick.org"))

	for i := 0; i < 2; i++ {
		p := &fakeAuthPage{loginVisibleSeq: []bool{false}}
		ok, diag := e.ensureAuthenticated(p, "/en/Club/")
		require.Nil(t, diag)
		assert.True(t, ok)
		assert.False(t, p.submitted)
	}

	// The stored record survived both runs unchanged.
	record := e.store.Load()
	assert.Equal(t, "https://www84.hattrick.org", record.AuthBase)
}

func TestEnsureAuthenticated_StaleSessionFallsThroughToLogin(t *testing.T) {
	cfg := testConfig(t)
	e := testEngine(t, cfg)
	require.NoError(t, e.store.Save(testCookies(), "https://www84.hattrick.org"))

	p := &fakeAuthPage{
		land: map[string]string{
			// The fast-path navigation bounces to the login redirect.
			"https://www84.hattrick.org/en/Club/": "https://www.hattrick.org/?ReturnUrl=%2fen%2fClub%2f",
		},
		// Home page shows the login form, post-submit check shows it gone.
		loginVisibleSeq: []bool{true, false},
		cookies:         testCookies(),
	}

	ok, diag := e.ensureAuthenticated(p, "/en/Club/")
	require.Nil(t, diag)
	assert.True(t, ok)

	assert.True(t, p.clickedLogin)
	assert.Equal(t, "manager", p.filledUser)
	assert.Equal(t, "secret", p.filledPass)
	assert.True(t, p.submitted)

	// Fresh record captured the new authenticated host.
	record := e.store.Load()
	require.False(t, record.IsEmpty())
	assert.Equal(t, "https://www84.hattrick.org", record.AuthBase)

	// Final navigation went to the target rewritten onto the new host.
	last := p.navigations[len(p.navigations)-1]
	assert.Equal(t, "https://www84.hattrick.org/en/Club/", last)
}

func TestEnsureAuthenticated_LoginControlVisibleInvalidatesSession(t *testing.T) {
	cfg := testConfig(t)
	e := testEngine(t, cfg)
	require.NoError(t, e.store.Save(testCookies(), "https://www84.hattrick.org"))

	p := &fakeAuthPage{
		// Landed URL is clean but the page still shows a Log In control,
		// then the slow path proceeds normally.
		loginVisibleSeq: []bool{true, true, false},
		cookies:         testCookies(),
	}

	ok, diag := e.ensureAuthenticated(p, "/en/Club/")
	require.Nil(t, diag)
	assert.True(t, ok)
	assert.True(t, p.submitted)
}

func TestEnsureAuthenticated_NoCredentialsProceedsUnauthenticated(t *testing.T) {
	cfg := testConfig(t)
	cfg.Username = ""
	cfg.Password = ""
	e := testEngine(t, cfg)

	p := &fakeAuthPage{}

	ok, diag := e.ensureAuthenticated(p, "/en/World/Series/?LeagueLevelUnitID=123")
	require.Nil(t, diag)
	assert.False(t, ok)
	assert.False(t, p.submitted)

	require.Len(t, p.navigations, 1)
	assert.Equal(t, "https://www.hattrick.org/en/World/Series/?LeagueLevelUnitID=123", p.navigations[0])

	// Nothing was persisted.
	assert.True(t, e.store.Load().IsEmpty())
}

func TestFreshLogin_UnverifiedLoginIsNotPersisted(t *testing.T) {
	cfg := testConfig(t)
	e := testEngine(t, cfg)

	p := &fakeAuthPage{
		// The login form stays visible after submission: wrong password.
		loginVisibleSeq: []bool{true},
		cookies:         testCookies(),
	}

	ok, diag := e.ensureAuthenticated(p, "/en/Club/")
	require.Nil(t, diag)
	assert.False(t, ok)
	assert.True(t, p.submitted)
	assert.True(t, e.store.Load().IsEmpty())
}

func TestFreshLogin_NavigationErrorClassified(t *testing.T) {
	cfg := testConfig(t)
	e := testEngine(t, cfg)

	p := &fakeAuthPage{
		loginVisibleSeq: []bool{true, false},
		cookies:         testCookies(),
		navErr: map[string]error{
			"https://www84.hattrick.org/en/Club/": errTimeout{},
		},
	}

	_, diag := e.ensureAuthenticated(p, "/en/Club/")
	require.NotNil(t, diag)
	assert.Equal(t, DiagTimeout, diag.Kind)
}

type errTimeout struct{}

func (errTimeout) Error() string { return "timeout 30000ms exceeded" }

func TestHostOf(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www84.hattrick.org/en/MyHattrick/", "https://www84.hattrick.org"},
		{"http://localhost:8080/path", "http://localhost:8080"},
		{"https://www.hattrick.org", "https://www.hattrick.org"},
		{"/en/Club/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hostOf(tt.url), tt.url)
	}
}

func TestIsLoginRedirect(t *testing.T) {
	assert.True(t, isLoginRedirect("https://www.hattrick.org/?ReturnUrl=%2fen%2f"))
	assert.True(t, isLoginRedirect("https://www.hattrick.org/en/Startpage.aspx"))
	assert.False(t, isLoginRedirect("https://www84.hattrick.org/en/MyHattrick/"))
}

func TestRewriteTarget(t *testing.T) {
	const base = "https://www.hattrick.org"
	const auth = "https://www84.hattrick.org"

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"relative path", "/en/Club/", auth + "/en/Club/"},
		{"canonical base rehosted", base + "/en/Club/Players/", auth + "/en/Club/Players/"},
		{"foreign absolute untouched", "https://forum.hattrick.org/thread/1", "https://forum.hattrick.org/thread/1"},
		{"already on auth host untouched", auth + "/en/Club/", auth + "/en/Club/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteTarget(tt.target, base, auth))
		})
	}
}
