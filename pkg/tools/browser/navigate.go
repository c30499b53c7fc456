package browser

import (
	"context"
	"fmt"
	"strings"

	cdp "github.com/entrhq/cdp-bridge/pkg/browser"
)

// Navigate opens url in a new page, replacing the explicit page, and returns
// the rendered document markup once the configured load state is reached.
func (e *Executor) Navigate(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", cdp.Wrap("navigate", "", invalidArgument("url is required"))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.navigate(ctx, url)
}

func (e *Executor) navigate(ctx context.Context, url string) (string, error) {
	e.logger.Infof("Navigating to %s", url)

	page, err := e.session.NewExplicitPage(ctx)
	if err != nil {
		return "", cdp.Wrap("navigate", url, err)
	}

	opts := cdp.GotoOptions{
		WaitUntil: e.opts.WaitUntil,
		Timeout:   e.navigationTimeout(ctx),
	}
	if err := page.Goto(url, opts); err != nil {
		e.logger.Errorf("Navigation to %s failed: %v", url, err)
		return "", cdp.Wrap("navigate", url, err)
	}

	content, err := page.Content()
	if err != nil {
		return "", cdp.Wrap("navigate", url, fmt.Errorf("failed to read page content: %w", err))
	}

	if title, err := page.Title(); err == nil {
		e.logger.Debugf("Page title: %s", title)
	}
	return content, nil
}

// BrowseToActiveTab opens the tab the resolver considers active in a new
// explicit page, so later operations keep targeting it even if the user
// switches tabs.
func (e *Executor) BrowseToActiveTab(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, ok, err := e.session.Resolve(ctx)
	if err != nil {
		return "", cdp.Wrap("browse_to_active_tab", "", err)
	}
	if !ok {
		return "", cdp.Wrap("browse_to_active_tab", "", cdp.ErrNoPage)
	}

	url := res.Page.URL()
	if !cdp.IsRegularURL(url) {
		return "", cdp.Wrap("browse_to_active_tab", url,
			fmt.Errorf("%w: active tab is not a regular page", cdp.ErrNoPage))
	}

	e.logger.Infof("Active tab %d (%s tier): %s", res.Index, res.Tier, url)
	if _, err := e.navigate(ctx, url); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully detected and navigated to tab: %s", url), nil
}
