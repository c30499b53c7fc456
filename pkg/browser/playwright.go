package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/cdp-bridge/pkg/logging"
)

// PlaywrightDriver drives remote Chromium-family browsers through
// playwright-go's CDP support. The playwright driver process is started on the
// first Connect and can be restarted after Stop.
type PlaywrightDriver struct {
	mu     sync.Mutex
	pw     *playwright.Playwright
	logger *logging.Logger
}

// NewPlaywrightDriver creates an idle driver.
func NewPlaywrightDriver(logger *logging.Logger) *PlaywrightDriver {
	return &PlaywrightDriver{logger: logger}
}

func (d *PlaywrightDriver) start() (*playwright.Playwright, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pw != nil {
		return d.pw, nil
	}

	// Browsers are never launched locally, only the driver is needed.
	// Driver output must stay off stdout.
	opts := &playwright.RunOptions{
		SkipInstallBrowsers: true,
		Verbose:             false,
		Stdout:              d.logger.Writer(),
		Stderr:              d.logger.Writer(),
	}

	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("failed to install playwright driver: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	d.pw = pw
	return pw, nil
}

// Connect attaches to the browser at endpoint over CDP. The tighter of ctx's
// deadline and timeout bounds the handshake.
func (d *PlaywrightDriver) Connect(ctx context.Context, endpoint string, timeout time.Duration) (Browser, error) {
	pw, err := d.start()
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	b, err := pw.Chromium.ConnectOverCDP(endpoint, playwright.BrowserTypeConnectOverCDPOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, err
	}
	return newPWBrowser(b), nil
}

// Stop shuts the driver process down. It is a no-op when not started.
func (d *PlaywrightDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pw == nil {
		return nil
	}
	err := d.pw.Stop()
	d.pw = nil
	if err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// pwBrowser hands out one wrapper per playwright object so that wrappers
// compare equal across enumerations.
type pwBrowser struct {
	b playwright.Browser

	mu       sync.Mutex
	contexts map[playwright.BrowserContext]*pwContext
	pages    map[playwright.Page]*pwPage
}

func newPWBrowser(b playwright.Browser) *pwBrowser {
	return &pwBrowser{
		b:        b,
		contexts: make(map[playwright.BrowserContext]*pwContext),
		pages:    make(map[playwright.Page]*pwPage),
	}
}

func (b *pwBrowser) wrapContext(c playwright.BrowserContext) *pwContext {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.contexts[c]; ok {
		return w
	}
	w := &pwContext{c: c, browser: b}
	b.contexts[c] = w
	return w
}

func (b *pwBrowser) wrapPage(p playwright.Page) *pwPage {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.pages[p]; ok {
		return w
	}
	w := &pwPage{p: p}
	b.pages[p] = w
	return w
}

// prune forgets pages that have been closed.
func (b *pwBrowser) prune() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for raw := range b.pages {
		if raw.IsClosed() {
			delete(b.pages, raw)
		}
	}
}

func (b *pwBrowser) Contexts() []Context {
	raw := b.b.Contexts()
	contexts := make([]Context, 0, len(raw))
	for _, c := range raw {
		contexts = append(contexts, b.wrapContext(c))
	}
	return contexts
}

func (b *pwBrowser) NewContext(opts ContextOptions) (Context, error) {
	c, err := b.b.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(opts.IgnoreHTTPSErrors),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	return b.wrapContext(c), nil
}

func (b *pwBrowser) Close() error      { return b.b.Close() }
func (b *pwBrowser) IsConnected() bool { return b.b.IsConnected() }

type pwContext struct {
	c       playwright.BrowserContext
	browser *pwBrowser
}

func (c *pwContext) Pages() []Page {
	c.browser.prune()
	raw := c.c.Pages()
	pages := make([]Page, 0, len(raw))
	for _, p := range raw {
		pages = append(pages, c.browser.wrapPage(p))
	}
	return pages
}

func (c *pwContext) NewPage() (Page, error) {
	p, err := c.c.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return c.browser.wrapPage(p), nil
}

func (c *pwContext) Close() error { return c.c.Close() }

type pwPage struct {
	p playwright.Page
}

func (p *pwPage) URL() string            { return p.p.URL() }
func (p *pwPage) Title() (string, error) { return p.p.Title() }
func (p *pwPage) Content() (string, error) {
	return p.p.Content()
}

func (p *pwPage) Goto(url string, opts GotoOptions) error {
	gotoOpts := playwright.PageGotoOptions{}
	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}

	if _, err := p.p.Goto(url, gotoOpts); err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return fmt.Errorf("%w after %s: %w", ErrNavigationTimeout, opts.Timeout, err)
		}
		return err
	}
	return nil
}

func (p *pwPage) Evaluate(script string, args ...any) (any, error) {
	return p.p.Evaluate(script, args...)
}

func (p *pwPage) Query(selector string) (Element, error) {
	el, err := p.p.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, nil
	}
	return &pwElement{el: el}, nil
}

func (p *pwPage) QueryAll(selector string) ([]Element, error) {
	raw, err := p.p.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(raw))
	for _, el := range raw {
		elements = append(elements, &pwElement{el: el})
	}
	return elements, nil
}

func (p *pwPage) Screenshot(fullPage bool) ([]byte, error) {
	return p.p.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
	})
}

func (p *pwPage) Close() error   { return p.p.Close() }
func (p *pwPage) IsClosed() bool { return p.p.IsClosed() }

type pwElement struct {
	el playwright.ElementHandle
}

func (e *pwElement) InnerText() (string, error) { return e.el.InnerText() }

func (e *pwElement) OuterHTML() (string, error) {
	v, err := e.el.Evaluate("el => el.outerHTML")
	if err != nil {
		return "", err
	}
	html, _ := v.(string)
	return html, nil
}

func (e *pwElement) Click() error            { return e.el.Click() }
func (e *pwElement) Fill(value string) error { return e.el.Fill(value) }
func (e *pwElement) Hover() error            { return e.el.Hover() }
func (e *pwElement) Focus() error            { return e.el.Focus() }
func (e *pwElement) Press(key string) error  { return e.el.Press(key) }

func (e *pwElement) SelectOption(value string) error {
	_, err := e.el.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}})
	return err
}

func (e *pwElement) Screenshot() ([]byte, error) {
	return e.el.Screenshot()
}
