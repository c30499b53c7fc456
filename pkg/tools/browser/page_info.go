package browser

import (
	"context"
	"strings"

	cdp "github.com/entrhq/cdp-bridge/pkg/browser"
)

const faviconScript = `() => {
	const link = document.querySelector("link[rel='shortcut icon']") ||
		document.querySelector("link[rel='icon']");
	return link ? link.href : null;
}`

// PageInfo reports the URL, title, transport security and favicon of the
// effective page. A favicon lookup failure is reported as no favicon.
func (e *Executor) PageInfo(ctx context.Context) (PageInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	page, err := e.effectivePage(ctx, "get_page_info", "")
	if err != nil {
		return PageInfo{}, err
	}

	url := page.URL()
	title, err := page.Title()
	if err != nil {
		return PageInfo{}, cdp.Wrap("get_page_info", url, err)
	}

	info := PageInfo{
		URL:      url,
		Title:    title,
		IsSecure: strings.HasPrefix(url, "https://"),
	}

	v, err := page.Evaluate(faviconScript)
	if err != nil {
		e.logger.Debugf("Favicon lookup failed on %s: %v", url, err)
	} else if href, ok := v.(string); ok && href != "" {
		info.Favicon = &href
	}
	return info, nil
}

// CurrentURL returns the effective page's URL.
func (e *Executor) CurrentURL(ctx context.Context) (string, error) {
	info, err := e.PageInfo(ctx)
	return info.URL, err
}

// PageTitle returns the effective page's title.
func (e *Executor) PageTitle(ctx context.Context) (string, error) {
	info, err := e.PageInfo(ctx)
	return info.Title, err
}

// ActiveTabContent returns the markup of the resolver's pick. The explicit
// page is ignored and left untouched.
func (e *Executor) ActiveTabContent(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, ok, err := e.session.Resolve(ctx)
	if err != nil {
		return "", cdp.Wrap("get_active_tab_content", "", err)
	}
	if !ok {
		return "", cdp.Wrap("get_active_tab_content", "", cdp.ErrNoPage)
	}

	e.logger.Infof("Selected active tab %d via %s tier: %s", res.Index, res.Tier, res.Page.URL())
	content, err := res.Page.Content()
	if err != nil {
		return "", cdp.Wrap("get_active_tab_content", res.Page.URL(), err)
	}
	return content, nil
}

// ListPages describes every open tab and marks the resolver's pick and the
// explicit page. Extension pages are labelled without probing their title.
func (e *Executor) ListPages(ctx context.Context) (TabList, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pages, err := e.session.Pages(ctx)
	if err != nil {
		return TabList{}, cdp.Wrap("list_tabs", "", err)
	}
	res, ok, err := e.session.Resolve(ctx)
	if err != nil {
		return TabList{}, cdp.Wrap("list_tabs", "", err)
	}

	explicit := e.session.Explicit()
	list := TabList{Tabs: make([]TabInfo, 0, len(pages))}
	if ok {
		list.ActiveTier = res.Tier.String()
	}

	for i, p := range pages {
		tab := TabInfo{
			Index:    i,
			URL:      p.URL(),
			Active:   ok && i == res.Index,
			Explicit: explicit != nil && p == explicit,
		}
		if cdp.IsExtensionURL(tab.URL) {
			tab.Title = "Extension"
		} else if title, err := p.Title(); err != nil {
			e.logger.Debugf("Title probe failed on %s: %v", tab.URL, err)
		} else {
			tab.Title = title
		}
		list.Tabs = append(list.Tabs, tab)
	}
	return list, nil
}
