package browser

import (
	"github.com/playwright-community/playwright-go"
)

// Site-specific selectors for the login flow. Best-effort: expected to break
// if the site redesigns its markup.
const (
	loginAffordanceSelector = "text=Log In"
	loginUsernameSelector   = "#inputLoginname"
	loginPasswordSelector   = "#inputPassword"
	loginSubmitSelector     = `button.primary-button:has-text("Log In")`
	authenticatedAreaGlob   = "**/MyHattrick/**"
)

// pwPage adapts a playwright page/context pair to the narrow interfaces the
// controller (authPage) and the executor (Driver) are written against.
type pwPage struct {
	page    playwright.Page
	context playwright.BrowserContext
}

func newPWPage(page playwright.Page, context playwright.BrowserContext) *pwPage {
	return &pwPage{page: page, context: context}
}

// --- authPage ---

func (p *pwPage) AddCookies(cookies []playwright.Cookie) error {
	return p.context.AddCookies(replayCookies(cookies))
}

func (p *pwPage) Cookies() ([]playwright.Cookie, error) {
	return p.context.Cookies()
}

func (p *pwPage) Navigate(url string, waitUntil *playwright.WaitUntilState, timeoutMs float64) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntil,
		Timeout:   playwright.Float(timeoutMs),
	})
	return err
}

func (p *pwPage) CurrentURL() string {
	return p.page.URL()
}

// LoginVisible reports whether a visible "Log In" affordance is present.
// Errors collapse to false: an unqueryable control is treated as absent.
func (p *pwPage) LoginVisible() bool {
	locator := p.page.Locator(loginAffordanceSelector)
	count, err := locator.Count()
	if err != nil || count == 0 {
		return false
	}
	visible, err := locator.First().IsVisible()
	if err != nil {
		return false
	}
	return visible
}

func (p *pwPage) ClickLogin() error {
	return p.page.Locator(loginAffordanceSelector).First().Click()
}

func (p *pwPage) FillCredentials(username, password string) error {
	if err := p.page.Fill(loginUsernameSelector, username); err != nil {
		return err
	}
	return p.page.Fill(loginPasswordSelector, password)
}

func (p *pwPage) SubmitLogin() error {
	return p.page.Locator(loginSubmitSelector).Click()
}

func (p *pwPage) WaitForAuthenticatedArea(timeoutMs float64) error {
	return p.page.WaitForURL(authenticatedAreaGlob, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(timeoutMs),
	})
}

func (p *pwPage) WaitForQuiescence(timeoutMs float64) error {
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(timeoutMs),
	})
}

func (p *pwPage) WaitMs(ms float64) {
	p.page.WaitForTimeout(ms)
}

// --- Driver ---

func (p *pwPage) Click(selector string, timeoutMs float64) error {
	return p.page.Click(selector, playwright.PageClickOptions{Timeout: playwright.Float(timeoutMs)})
}

func (p *pwPage) Fill(selector, value string, timeoutMs float64) error {
	return p.page.Fill(selector, value, playwright.PageFillOptions{Timeout: playwright.Float(timeoutMs)})
}

func (p *pwPage) SelectOption(selector, value string, timeoutMs float64) error {
	_, err := p.page.SelectOption(selector,
		playwright.SelectOptionValues{Values: &[]string{value}},
		playwright.PageSelectOptionOptions{Timeout: playwright.Float(timeoutMs)})
	return err
}

func (p *pwPage) Check(selector string, timeoutMs float64) error {
	return p.page.Check(selector, playwright.PageCheckOptions{Timeout: playwright.Float(timeoutMs)})
}

func (p *pwPage) Uncheck(selector string, timeoutMs float64) error {
	return p.page.Uncheck(selector, playwright.PageUncheckOptions{Timeout: playwright.Float(timeoutMs)})
}

func (p *pwPage) Hover(selector string, timeoutMs float64) error {
	return p.page.Hover(selector, playwright.PageHoverOptions{Timeout: playwright.Float(timeoutMs)})
}

func (p *pwPage) Press(selector, key string, timeoutMs float64) error {
	return p.page.Press(selector, key, playwright.PagePressOptions{Timeout: playwright.Float(timeoutMs)})
}

func (p *pwPage) Goto(url string, timeoutMs float64) error {
	return p.Navigate(url, playwright.WaitUntilStateNetworkidle, timeoutMs)
}

func (p *pwPage) Evaluate(js string) (interface{}, error) {
	return p.page.Evaluate(js)
}

func (p *pwPage) DragAndDrop(source, target string, timeoutMs float64) error {
	return p.page.DragAndDrop(source, target, playwright.PageDragAndDropOptions{
		Timeout: playwright.Float(timeoutMs),
	})
}

// --- extraction surface ---

// BodyText returns the page's visible text as the browser renders it.
func (p *pwPage) BodyText() (string, error) {
	value, err := p.page.Evaluate("() => document.body.innerText")
	if err != nil {
		return "", err
	}
	text, _ := value.(string)
	return text, nil
}

func (p *pwPage) Content() (string, error) {
	return p.page.Content()
}
