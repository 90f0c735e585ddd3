// Package browser implements the session-aware automation engine for
// hattrick.org: it decides per request whether a saved session can be reused
// or a fresh login is required, performs the login state machine, persists
// the resulting session, runs an optional caller-supplied interaction, and
// captures a normalized snapshot of the resulting page.
package browser

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/playwright-community/playwright-go"

	"github.com/sela-labs/hattrick-mcp/pkg/config"
	"github.com/sela-labs/hattrick-mcp/pkg/logging"
)

const (
	viewportWidth  = 1280
	viewportHeight = 720
)

// Engine owns the playwright runtime, the session store, and the global run
// lock. One logical operation is in flight at a time: callers sharing the
// engine are serialized rather than racing the on-disk session record.
type Engine struct {
	cfg   *config.Config
	store *SessionStore
	log   *logging.Logger
	hosts []glob.Glob

	mu      sync.Mutex
	pw      *playwright.Playwright
	started bool
}

// NewEngine builds an engine from an explicit configuration object. The
// allowlist patterns are compiled eagerly so a bad pattern fails at startup
// rather than on the first navigation.
func NewEngine(cfg *config.Config, log *logging.Logger) (*Engine, error) {
	hosts := make([]glob.Glob, 0, len(cfg.AllowedHosts))
	for _, pattern := range cfg.AllowedHosts {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed host pattern %q: %w", pattern, err)
		}
		hosts = append(hosts, g)
	}

	return &Engine{
		cfg:   cfg,
		store: NewSessionStore(cfg.DataDir),
		log:   log,
		hosts: hosts,
	}, nil
}

// Install downloads the browser binaries if needed. Output is discarded so
// nothing leaks onto the MCP stdio transport.
func (e *Engine) Install() error {
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	return nil
}

// ensureStarted lazily boots the playwright driver. Caller holds e.mu.
func (e *Engine) ensureStarted() error {
	if e.started {
		return nil
	}
	pw, err := playwright.Run(&playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	})
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}
	e.pw = pw
	e.started = true
	return nil
}

// Shutdown stops the playwright driver. Safe to call without a prior run.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started || e.pw == nil {
		return nil
	}
	e.started = false
	if err := e.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// RunWithPage is the single entry point of the core: authenticate (reusing
// the saved session when possible), position the page at target, run the
// optional interaction, and extract a snapshot. Every failure mode resolves
// to a snapshot with Error populated; nothing escapes as a panic or crash.
func (e *Engine) RunWithPage(ctx context.Context, target string, interaction Interaction) *PageSnapshot {
	snap := &PageSnapshot{FinalURL: target, Links: []Link{}, Tables: []Table{}}

	if diag := e.checkTarget(target); diag != nil {
		snap.Error = diag
		return snap
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		snap.Error = NewDiagnostic(DiagBrowser, err.Error())
		return snap
	}

	if err := e.ensureStarted(); err != nil {
		snap.Error = NewDiagnostic(DiagBrowser, err.Error())
		return snap
	}

	b, err := e.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(!e.cfg.Headful),
	})
	if err != nil {
		snap.Error = NewDiagnostic(DiagBrowser, fmt.Sprintf("failed to launch browser: %v", err))
		return snap
	}
	defer func() {
		if err := b.Close(); err != nil {
			e.log.Debugf("browser close: %v", err)
		}
	}()

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: viewportWidth, Height: viewportHeight},
	})
	if err != nil {
		snap.Error = NewDiagnostic(DiagBrowser, fmt.Sprintf("failed to create context: %v", err))
		return snap
	}
	defer bctx.Close()

	pg, err := bctx.NewPage()
	if err != nil {
		snap.Error = NewDiagnostic(DiagBrowser, fmt.Sprintf("failed to create page: %v", err))
		return snap
	}
	pg.SetDefaultTimeout(float64(e.cfg.NavTimeoutMs))

	p := newPWPage(pg, bctx)

	if _, diag := e.ensureAuthenticated(p, target); diag != nil {
		// Record the navigation failure but still extract whatever page
		// state resulted; degraded content is the caller's signal.
		snap.Error = diag
	}

	if interaction != nil {
		if seq, ok := interaction.(*ActionSequence); ok && seq.ResolveURL == nil {
			seq.ResolveURL = e.resolveActionURL
		}
		interaction.Run(p)
	}

	e.capture(p, snap)
	return snap
}

// resolveActionURL rewrites a goto step's target onto the canonical base and
// enforces the host allowlist.
func (e *Engine) resolveActionURL(raw string) (string, error) {
	resolved := rewriteTarget(raw, e.cfg.BaseURL, e.cfg.BaseURL)
	if diag := e.checkTarget(resolved); diag != nil {
		return "", diag
	}
	return resolved, nil
}

// checkTarget validates absolute navigation targets against the configured
// host allowlist. Relative paths always pass; they are rewritten onto a
// trusted host before navigation.
func (e *Engine) checkTarget(target string) *Diagnostic {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return NewDiagnostic(DiagInput, fmt.Sprintf("unparsable target %q", target))
	}
	host := u.Hostname()
	for _, g := range e.hosts {
		if g.Match(host) {
			return nil
		}
	}
	return NewDiagnostic(DiagInput, fmt.Sprintf("host %q is not in the allowed host list", host))
}

// capture reads the resulting page into the snapshot. Extraction errors are
// reported only when nothing more specific happened earlier.
func (e *Engine) capture(p *pwPage, snap *PageSnapshot) {
	snap.FinalURL = p.CurrentURL()

	text, err := p.BodyText()
	if err != nil {
		if snap.Error == nil {
			snap.Error = classifyError(err)
		}
		return
	}
	snap.BodyText = text

	content, err := p.Content()
	if err != nil {
		e.log.Debugf("content read failed: %v", err)
		return
	}
	root, err := parseHTML(content)
	if err != nil {
		e.log.Debugf("content parse failed: %v", err)
		return
	}

	base, err := url.Parse(snap.FinalURL)
	if err != nil {
		base = nil
	}
	snap.Links = extractLinks(root, base)
	snap.Tables = extractTables(root)
}
