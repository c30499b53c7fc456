package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdp "github.com/entrhq/cdp-bridge/pkg/browser"
	"github.com/entrhq/cdp-bridge/pkg/browser/browsertest"
	"github.com/entrhq/cdp-bridge/pkg/logging"
)

type fixture struct {
	exec    *Executor
	ctx     *browsertest.Context
	browser *browsertest.Browser
	driver  *browsertest.Driver
}

func newFixture(pages ...*browsertest.Page) *fixture {
	bctx := browsertest.NewContext(pages...)
	b := browsertest.NewBrowser(bctx)
	driver := browsertest.NewDriver(b)
	logger := logging.Discard("test")
	session := cdp.NewSession(driver, cdp.ConnectionOptions{Endpoint: "http://localhost:9222"}, logger)
	return &fixture{
		exec:    NewExecutor(session, Options{}, logger),
		ctx:     bctx,
		browser: b,
		driver:  driver,
	}
}

func activePage(url, title string) *browsertest.Page {
	p := browsertest.NewPage(url, title)
	p.Visible = true
	p.Focused = true
	return p
}

func assertOp(t *testing.T, err error, op, target string) {
	t.Helper()
	var opErr *cdp.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, op, opErr.Op)
	assert.Equal(t, target, opErr.Target)
}

func TestNavigate(t *testing.T) {
	f := newFixture()
	f.ctx.OnNewPage = func(p *browsertest.Page) {
		p.GotoHTML = "<html><body>hello</body></html>"
	}

	content, err := f.exec.Navigate(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "<html><body>hello</body></html>", content)

	require.Len(t, f.ctx.Pgs, 1)
	page := f.ctx.Pgs[0]
	assert.Equal(t, []string{"https://example.com"}, page.Gotos)
	assert.Equal(t, "networkidle", page.GotoOps[0].WaitUntil)
	assert.Equal(t, 30*time.Second, page.GotoOps[0].Timeout)
}

func TestNavigateReplacesExplicitPage(t *testing.T) {
	f := newFixture()

	_, err := f.exec.Navigate(context.Background(), "https://one.example")
	require.NoError(t, err)
	_, err = f.exec.Navigate(context.Background(), "https://two.example")
	require.NoError(t, err)

	require.Len(t, f.ctx.Pgs, 2)
	assert.True(t, f.ctx.Pgs[0].Closed)
	assert.False(t, f.ctx.Pgs[1].Closed)

	url, err := f.exec.CurrentURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://two.example", url)
}

func TestNavigateHonorsContextDeadline(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := f.exec.Navigate(ctx, "https://example.com")
	require.NoError(t, err)
	timeout := f.ctx.Pgs[0].GotoOps[0].Timeout
	assert.LessOrEqual(t, timeout, 5*time.Second)
	assert.Greater(t, timeout, time.Duration(0))
}

func TestNavigateErrors(t *testing.T) {
	t.Run("empty url", func(t *testing.T) {
		f := newFixture()
		_, err := f.exec.Navigate(context.Background(), "  ")
		assert.ErrorIs(t, err, cdp.ErrInvalidArgument)
		assert.Zero(t, f.driver.Connects)
	})

	t.Run("timeout", func(t *testing.T) {
		f := newFixture()
		f.ctx.OnNewPage = func(p *browsertest.Page) {
			p.GotoErr = fmt.Errorf("%w after 30s", cdp.ErrNavigationTimeout)
		}

		_, err := f.exec.Navigate(context.Background(), "https://slow.example")
		assert.ErrorIs(t, err, cdp.ErrNavigationTimeout)
		assertOp(t, err, "navigate", "https://slow.example")
	})

	t.Run("browser unreachable", func(t *testing.T) {
		f := newFixture()
		f.driver.ConnectErr = errors.New("connection refused")

		_, err := f.exec.Navigate(context.Background(), "https://example.com")
		assert.ErrorIs(t, err, cdp.ErrConnection)
		assert.Contains(t, err.Error(), "--remote-debugging-port=9222")
		assertOp(t, err, "navigate", "https://example.com")
	})
}

func TestPageInfo(t *testing.T) {
	page := activePage("https://secure.example/path", "Secure")
	page.EvalFunc = func(script string, args ...any) (any, error) {
		return "https://secure.example/favicon.ico", nil
	}
	f := newFixture(page)

	info, err := f.exec.PageInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://secure.example/path", info.URL)
	assert.Equal(t, "Secure", info.Title)
	assert.True(t, info.IsSecure)
	require.NotNil(t, info.Favicon)
	assert.Equal(t, "https://secure.example/favicon.ico", *info.Favicon)

	title, err := f.exec.PageTitle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Secure", title)
}

func TestPageInfoWithoutFavicon(t *testing.T) {
	tests := []struct {
		name string
		eval func(string, ...any) (any, error)
	}{
		{"no icon link", func(string, ...any) (any, error) { return nil, nil }},
		{"lookup fails", func(string, ...any) (any, error) { return nil, errors.New("csp") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := activePage("http://plain.example", "Plain")
			page.EvalFunc = tt.eval
			f := newFixture(page)

			info, err := f.exec.PageInfo(context.Background())
			require.NoError(t, err)
			assert.False(t, info.IsSecure)
			assert.Nil(t, info.Favicon)
		})
	}
}

func TestPageInfoNoPage(t *testing.T) {
	f := newFixture()

	_, err := f.exec.PageInfo(context.Background())
	assert.ErrorIs(t, err, cdp.ErrNoPage)
	assertOp(t, err, "get_page_info", "")
}

func contentPage() *browsertest.Page {
	p := activePage("https://shop.example/catalog/", "Shop")
	p.HTML = `<html><body>
		<a href="/cart">Cart</a>
		<nav><a class="nav" href="item/1">One</a><a class="nav" href="https://other.example/">Other</a></nav>
		<a name="anchor-only">No href</a>
		<script>var x = 1;</script>
		<p class="price">10</p>
	</body></html>`
	p.WithElements("body", browsertest.NewElement("Cart One Other 10", ""))
	p.WithElements(".price",
		browsertest.NewElement("10", `<p class="price">10</p>`),
		browsertest.NewElement("20", `<p class="price">20</p>`),
	)
	return p
}

func TestContent(t *testing.T) {
	tests := []struct {
		name      string
		req       ContentRequest
		wantText  string
		wantLinks []string
		wantErr   error
	}{
		{
			name:     "full document markup by default",
			req:      ContentRequest{},
			wantText: contentPage().HTML,
		},
		{
			name:     "markup alias with selector returns outer html of first match",
			req:      ContentRequest{Kind: KindMarkup, Selector: ".price"},
			wantText: `<p class="price">10</p>`,
		},
		{
			name:    "markup with unmatched selector",
			req:     ContentRequest{Kind: KindHTML, Selector: "#missing"},
			wantErr: cdp.ErrElementNotFound,
		},
		{
			name:     "text of body",
			req:      ContentRequest{Kind: KindText},
			wantText: "Cart One Other 10",
		},
		{
			name:     "text joins every match",
			req:      ContentRequest{Kind: KindText, Selector: ".price"},
			wantText: "10\n20",
		},
		{
			name:     "text with no matches is empty",
			req:      ContentRequest{Kind: KindText, Selector: ".nothing"},
			wantText: "",
		},
		{
			name: "all links resolved against the page",
			req:  ContentRequest{Kind: KindLinks},
			wantLinks: []string{
				"https://shop.example/cart",
				"https://shop.example/catalog/item/1",
				"https://other.example/",
			},
		},
		{
			name: "links limited to matching anchors",
			req:  ContentRequest{Kind: KindLinks, Selector: "a.nav"},
			wantLinks: []string{
				"https://shop.example/catalog/item/1",
				"https://other.example/",
			},
		},
		{
			name:    "unknown kind",
			req:     ContentRequest{Kind: "pdf"},
			wantErr: cdp.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(contentPage())
			res, err := f.exec.Content(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantLinks != nil {
				assert.Equal(t, KindLinks, res.Kind)
				assert.Equal(t, tt.wantLinks, res.Links)
				return
			}
			assert.Equal(t, tt.wantText, res.Text)
		})
	}
}

func TestContentClean(t *testing.T) {
	f := newFixture(contentPage())

	res, err := f.exec.Content(context.Background(), ContentRequest{Kind: KindClean})
	require.NoError(t, err)
	assert.Equal(t, KindClean, res.Kind)
	assert.Contains(t, res.Text, `<p class="price">`)
	assert.NotContains(t, res.Text, "var x")
}

func TestContentInvalidKindDoesNotConnect(t *testing.T) {
	f := newFixture(contentPage())

	_, err := f.exec.Content(context.Background(), ContentRequest{Kind: "pdf"})
	require.Error(t, err)
	assert.Zero(t, f.driver.Connects)
}

func TestContentNoPage(t *testing.T) {
	f := newFixture()

	_, err := f.exec.Content(context.Background(), ContentRequest{Kind: KindText})
	assert.ErrorIs(t, err, cdp.ErrNoPage)
}

func TestInteract(t *testing.T) {
	tests := []struct {
		name       string
		req        InteractRequest
		wantAction string
		wantMsg    string
	}{
		{"click", InteractRequest{Action: "click", Selector: "#go"}, "click", "Successfully performed click on #go"},
		{"fill", InteractRequest{Action: "fill", Selector: "#go", Value: "abc"}, "fill:abc", "Successfully performed fill on #go"},
		{"type alias", InteractRequest{Action: "Type", Selector: "#go", Value: "xyz"}, "fill:xyz", "Successfully performed type on #go"},
		{"select", InteractRequest{Action: "select", Selector: "#go", Value: "blue"}, "select:blue", "Successfully performed select on #go"},
		{"hover", InteractRequest{Action: "hover", Selector: "#go"}, "hover", "Successfully performed hover on #go"},
		{"focus", InteractRequest{Action: "focus", Selector: "#go"}, "focus", "Successfully performed focus on #go"},
		{"press", InteractRequest{Action: "press", Selector: "#go", Value: "Enter"}, "press:Enter", "Successfully performed press on #go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := browsertest.NewElement("Go", "<button id=\"go\">Go</button>")
			f := newFixture(activePage("https://form.example", "Form").WithElements("#go", el))

			msg, err := f.exec.Interact(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMsg, msg)
			assert.Equal(t, []string{tt.wantAction}, el.Actions)
		})
	}
}

func TestInteractErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     InteractRequest
		wantErr error
	}{
		{"missing element", InteractRequest{Action: "click", Selector: "#nope"}, cdp.ErrElementNotFound},
		{"fill without value", InteractRequest{Action: "fill", Selector: "#go"}, cdp.ErrInvalidArgument},
		{"select without value", InteractRequest{Action: "select", Selector: "#go"}, cdp.ErrInvalidArgument},
		{"press without value", InteractRequest{Action: "press", Selector: "#go"}, cdp.ErrInvalidArgument},
		{"unknown action", InteractRequest{Action: "drag", Selector: "#go"}, cdp.ErrInvalidArgument},
		{"empty selector", InteractRequest{Action: "click"}, cdp.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := browsertest.NewElement("Go", "")
			f := newFixture(activePage("https://form.example", "Form").WithElements("#go", el))

			_, err := f.exec.Interact(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assertOp(t, err, "interact_with_page", tt.req.Selector)
			assert.Empty(t, el.Actions)
		})
	}
}

func TestInteractWrapsElementFailure(t *testing.T) {
	el := browsertest.NewElement("Go", "")
	el.Err = errors.New("element is detached")
	f := newFixture(activePage("https://form.example", "Form").WithElements("#go", el))

	_, err := f.exec.Interact(context.Background(), InteractRequest{Action: "click", Selector: "#go"})
	require.Error(t, err)
	assertOp(t, err, "interact_with_page", "#go")
	assert.Contains(t, err.Error(), "click failed: element is detached")
}

func TestScreenshot(t *testing.T) {
	page := activePage("https://pics.example", "Pics").WithElements("#logo", browsertest.NewElement("logo", ""))
	page.ScreenshotData = []byte("png")
	f := newFixture(page)
	ctx := context.Background()

	viewport, err := f.exec.Screenshot(ctx, ScreenshotRequest{})
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png")), viewport)

	full, err := f.exec.Screenshot(ctx, ScreenshotRequest{FullPage: true})
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("full:png")), full)

	element, err := f.exec.Screenshot(ctx, ScreenshotRequest{Selector: "#logo"})
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("element:logo")), element)

	_, err = f.exec.Screenshot(ctx, ScreenshotRequest{Selector: "#banner"})
	assert.ErrorIs(t, err, cdp.ErrElementNotFound)
}

func TestEvaluate(t *testing.T) {
	var gotArgs []any
	page := activePage("https://app.example", "App")
	page.EvalFunc = func(script string, args ...any) (any, error) {
		gotArgs = args
		if script == "() => { throw new Error('bad') }" {
			return nil, errors.New("Error: bad")
		}
		return map[string]any{"sum": 3.0}, nil
	}
	f := newFixture(page)
	ctx := context.Background()

	result, err := f.exec.Evaluate(ctx, "(a) => ({sum: a[0] + a[1]})", []any{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"sum": 3.0}, result)
	assert.Equal(t, []any{[]any{1, 2}}, gotArgs)

	_, err = f.exec.Evaluate(ctx, "() => document.title", nil)
	require.NoError(t, err)
	assert.Empty(t, gotArgs)

	_, err = f.exec.Evaluate(ctx, "() => { throw new Error('bad') }", nil)
	assert.ErrorIs(t, err, cdp.ErrEvaluation)
	assert.Contains(t, err.Error(), "Error: bad")

	_, err = f.exec.Evaluate(ctx, "", nil)
	assert.ErrorIs(t, err, cdp.ErrInvalidArgument)
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "undefined", FormatResult(nil))
	assert.Equal(t, "plain", FormatResult("plain"))
	assert.Equal(t, "42", FormatResult(42))
	assert.Equal(t, "{\n  \"a\": true\n}", FormatResult(map[string]any{"a": true}))
}

func TestActiveTabContentIgnoresExplicitPage(t *testing.T) {
	active := activePage("https://active.example", "Active")
	active.HTML = "<p>active</p>"
	f := newFixture(active)
	f.ctx.OnNewPage = func(p *browsertest.Page) { p.GotoHTML = "<p>navigated</p>" }

	_, err := f.exec.Navigate(context.Background(), "https://navigated.example")
	require.NoError(t, err)

	content, err := f.exec.ActiveTabContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<p>active</p>", content)

	// The navigated page is still the effective page.
	url, err := f.exec.CurrentURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://navigated.example", url)
}

func TestActiveTabContentNoPages(t *testing.T) {
	f := newFixture()
	_, err := f.exec.ActiveTabContent(context.Background())
	assert.ErrorIs(t, err, cdp.ErrNoPage)
}

func TestListPages(t *testing.T) {
	ext := browsertest.NewPage("chrome-extension://abc/popup.html", "")
	ext.TitleErr = errors.New("must not be probed")
	regular := browsertest.NewPage("https://docs.example", "Docs")
	f := newFixture(ext, regular)

	_, err := f.exec.Navigate(context.Background(), "https://navigated.example")
	require.NoError(t, err)

	list, err := f.exec.ListPages(context.Background())
	require.NoError(t, err)
	require.Len(t, list.Tabs, 3)

	assert.Equal(t, "Extension", list.Tabs[0].Title)
	assert.Equal(t, "Docs", list.Tabs[1].Title)
	assert.True(t, list.Tabs[1].Active)
	assert.Equal(t, "titled", list.ActiveTier)
	assert.True(t, list.Tabs[2].Explicit)
	assert.False(t, list.Tabs[2].Active)
	assert.Equal(t, []int{0, 1, 2}, []int{list.Tabs[0].Index, list.Tabs[1].Index, list.Tabs[2].Index})
}

func TestBrowseToActiveTab(t *testing.T) {
	active := activePage("https://reading.example/article", "Article")
	f := newFixture(active)

	msg, err := f.exec.BrowseToActiveTab(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Successfully detected and navigated to tab: https://reading.example/article", msg)

	require.Len(t, f.ctx.Pgs, 2)
	assert.Equal(t, []string{"https://reading.example/article"}, f.ctx.Pgs[1].Gotos)
	assert.Empty(t, active.Gotos)
}

func TestBrowseToActiveTabNeedsRegularPage(t *testing.T) {
	f := newFixture(browsertest.NewPage("chrome-extension://abc", "Ext"))

	_, err := f.exec.BrowseToActiveTab(context.Background())
	assert.ErrorIs(t, err, cdp.ErrNoPage)
	assert.Len(t, f.ctx.Pgs, 1)
}

func TestShutdown(t *testing.T) {
	f := newFixture()
	_, err := f.exec.Navigate(context.Background(), "https://example.com")
	require.NoError(t, err)

	results := f.exec.Shutdown()
	require.Len(t, results, 4)
	assert.Empty(t, cdp.Failed(results))
	assert.True(t, f.ctx.Pgs[0].Closed)
	assert.Equal(t, 1, f.browser.Closes)
	assert.Equal(t, 1, f.driver.Stops)

	again := f.exec.Shutdown()
	for _, r := range again {
		assert.True(t, r.Skipped, r.Step)
	}

	// Operations reconnect after shutdown.
	_, err = f.exec.Navigate(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, f.driver.Connects)
}

func TestConcurrentCallsAreSerialized(t *testing.T) {
	el := browsertest.NewElement("Go", "")
	f := newFixture(activePage("https://form.example", "Form").WithElements("#go", el))

	const calls = 25
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.exec.Interact(context.Background(), InteractRequest{Action: "click", Selector: "#go"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, el.Actions, calls)
	assert.Equal(t, 1, f.driver.Connects)
}
