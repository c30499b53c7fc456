// Package browsertest provides in-memory implementations of the browser
// driver interfaces with scriptable probe results and failures.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/cdp-bridge/pkg/browser"
)

// ErrProbe is the default error returned by failing probes.
var ErrProbe = errors.New("probe failed")

// Driver is a fake browser.Driver serving a fixed Browser.
type Driver struct {
	Browser *Browser

	// ConnectErr, when set, is returned by every Connect.
	ConnectErr error
	StopErr    error

	Connects  int
	Stops     int
	Endpoints []string
}

// NewDriver returns a driver that connects to b.
func NewDriver(b *Browser) *Driver {
	return &Driver{Browser: b}
}

func (d *Driver) Connect(ctx context.Context, endpoint string, timeout time.Duration) (browser.Browser, error) {
	d.Connects++
	d.Endpoints = append(d.Endpoints, endpoint)
	if d.ConnectErr != nil {
		return nil, d.ConnectErr
	}
	if d.Browser == nil {
		return nil, errors.New("no browser listening")
	}
	d.Browser.Disconnected = false
	return d.Browser, nil
}

func (d *Driver) Stop() error {
	d.Stops++
	return d.StopErr
}

// Browser is a fake browser.Browser.
type Browser struct {
	Ctxs          []*Context
	Disconnected  bool
	CloseErr      error
	NewContextErr error

	Closes      int
	NewContexts []browser.ContextOptions
}

// NewBrowser returns a browser holding contexts.
func NewBrowser(contexts ...*Context) *Browser {
	return &Browser{Ctxs: contexts}
}

func (b *Browser) Contexts() []browser.Context {
	out := make([]browser.Context, 0, len(b.Ctxs))
	for _, c := range b.Ctxs {
		out = append(out, c)
	}
	return out
}

func (b *Browser) NewContext(opts browser.ContextOptions) (browser.Context, error) {
	b.NewContexts = append(b.NewContexts, opts)
	if b.NewContextErr != nil {
		return nil, b.NewContextErr
	}
	c := NewContext()
	b.Ctxs = append(b.Ctxs, c)
	return c, nil
}

func (b *Browser) Close() error {
	b.Closes++
	b.Disconnected = true
	return b.CloseErr
}

func (b *Browser) IsConnected() bool { return !b.Disconnected }

// Context is a fake browser.Context.
type Context struct {
	Pgs        []*Page
	CloseErr   error
	NewPageErr error

	// NewPageURL is the URL given to pages created by NewPage.
	NewPageURL string

	// OnNewPage, when set, can script pages created by NewPage.
	OnNewPage func(*Page)

	Closes int
}

// NewContext returns a context holding pages.
func NewContext(pages ...*Page) *Context {
	return &Context{Pgs: pages, NewPageURL: "about:blank"}
}

func (c *Context) Pages() []browser.Page {
	out := make([]browser.Page, 0, len(c.Pgs))
	for _, p := range c.Pgs {
		if !p.Closed {
			out = append(out, p)
		}
	}
	return out
}

func (c *Context) NewPage() (browser.Page, error) {
	if c.NewPageErr != nil {
		return nil, c.NewPageErr
	}
	p := NewPage(c.NewPageURL, "")
	if c.OnNewPage != nil {
		c.OnNewPage(p)
	}
	c.Pgs = append(c.Pgs, p)
	return p, nil
}

func (c *Context) Close() error {
	c.Closes++
	return c.CloseErr
}

// Page is a fake browser.Page. Visibility and focus are answered for the
// resolver's probe scripts. Other scripts go to EvalFunc.
type Page struct {
	Href      string
	PageTitle string
	Visible   bool
	Focused   bool
	HTML      string

	VisibilityErr error
	FocusErr      error
	TitleErr      error
	CloseErr      error
	GotoErr       error
	ContentErr    error

	// GotoHTML replaces HTML after a successful Goto.
	GotoHTML string

	// Elements maps selectors to matching elements.
	Elements map[string][]*Element

	EvalFunc       func(script string, args ...any) (any, error)
	ScreenshotData []byte

	Closed  bool
	Closes  int
	Probes  []string
	Gotos   []string
	GotoOps []browser.GotoOptions
}

// NewPage returns an open page.
func NewPage(url, title string) *Page {
	return &Page{Href: url, PageTitle: title, Elements: map[string][]*Element{}}
}

// WithElements registers elements for selector and returns p.
func (p *Page) WithElements(selector string, elements ...*Element) *Page {
	p.Elements[selector] = elements
	return p
}

func (p *Page) URL() string { return p.Href }

func (p *Page) Title() (string, error) {
	p.Probes = append(p.Probes, "title")
	if p.TitleErr != nil {
		return "", p.TitleErr
	}
	return p.PageTitle, nil
}

func (p *Page) Goto(url string, opts browser.GotoOptions) error {
	p.Gotos = append(p.Gotos, url)
	p.GotoOps = append(p.GotoOps, opts)
	if p.GotoErr != nil {
		return p.GotoErr
	}
	p.Href = url
	if p.GotoHTML != "" {
		p.HTML = p.GotoHTML
	}
	return nil
}

func (p *Page) Content() (string, error) {
	if p.ContentErr != nil {
		return "", p.ContentErr
	}
	return p.HTML, nil
}

func (p *Page) Evaluate(script string, args ...any) (any, error) {
	switch script {
	case browser.VisibilityScript:
		p.Probes = append(p.Probes, "visibility")
		if p.VisibilityErr != nil {
			return nil, p.VisibilityErr
		}
		return p.Visible, nil
	case browser.FocusScript:
		p.Probes = append(p.Probes, "focus")
		if p.FocusErr != nil {
			return nil, p.FocusErr
		}
		return p.Focused, nil
	}
	if p.EvalFunc != nil {
		return p.EvalFunc(script, args...)
	}
	return nil, fmt.Errorf("unexpected script %q", script)
}

func (p *Page) Query(selector string) (browser.Element, error) {
	matches := p.Elements[selector]
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (p *Page) QueryAll(selector string) ([]browser.Element, error) {
	matches := p.Elements[selector]
	out := make([]browser.Element, 0, len(matches))
	for _, el := range matches {
		out = append(out, el)
	}
	return out, nil
}

func (p *Page) Screenshot(fullPage bool) ([]byte, error) {
	if fullPage {
		return append([]byte("full:"), p.ScreenshotData...), nil
	}
	return p.ScreenshotData, nil
}

func (p *Page) Close() error {
	p.Closes++
	if p.CloseErr != nil {
		return p.CloseErr
	}
	p.Closed = true
	return nil
}

func (p *Page) IsClosed() bool { return p.Closed }

// Element is a fake browser.Element that records the actions performed on it.
type Element struct {
	Text  string
	Outer string
	Err   error

	Actions []string
}

// NewElement returns an element with inner text and outer markup.
func NewElement(text, outer string) *Element {
	return &Element{Text: text, Outer: outer}
}

func (e *Element) record(action string) error {
	e.Actions = append(e.Actions, action)
	return e.Err
}

func (e *Element) InnerText() (string, error)  { return e.Text, e.Err }
func (e *Element) OuterHTML() (string, error)  { return e.Outer, e.Err }
func (e *Element) Click() error                { return e.record("click") }
func (e *Element) Fill(value string) error     { return e.record("fill:" + value) }
func (e *Element) SelectOption(v string) error { return e.record("select:" + v) }
func (e *Element) Hover() error                { return e.record("hover") }
func (e *Element) Focus() error                { return e.record("focus") }
func (e *Element) Press(key string) error      { return e.record("press:" + key) }

func (e *Element) Screenshot() ([]byte, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return []byte("element:" + e.Text), nil
}
