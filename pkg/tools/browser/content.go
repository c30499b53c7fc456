package browser

import (
	"context"
	"fmt"
	"strings"

	cdp "github.com/entrhq/cdp-bridge/pkg/browser"
)

// Content returns content of the effective page in the requested kind.
//
// With a selector, html returns the first match's outer HTML and fails with
// ErrElementNotFound when nothing matches. text joins the inner text of every
// match with newlines, links keeps only matches that are anchors, and clean
// cleans the first match's outer HTML.
func (e *Executor) Content(ctx context.Context, req ContentRequest) (ContentResult, error) {
	kind := ContentKind(strings.ToLower(strings.TrimSpace(string(req.Kind))))
	if kind == "" || kind == KindMarkup {
		kind = KindHTML
	}
	op := "get_page_content"

	switch kind {
	case KindHTML, KindText, KindLinks, KindClean:
	default:
		return ContentResult{}, cdp.Wrap(op, req.Selector,
			invalidArgument("invalid content kind %q (must be 'html', 'text', 'links' or 'clean')", req.Kind))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	page, err := e.effectivePage(ctx, op, req.Selector)
	if err != nil {
		return ContentResult{}, err
	}

	result := ContentResult{Kind: kind}
	switch kind {
	case KindHTML:
		result.Text, err = e.markup(page, req.Selector)
	case KindText:
		result.Text, err = e.text(page, req.Selector)
	case KindLinks:
		result.Links, err = e.links(page, req.Selector)
	case KindClean:
		result.Text, err = e.clean(page, req.Selector)
	}
	if err != nil {
		return ContentResult{}, cdp.Wrap(op, req.Selector, err)
	}
	return result, nil
}

func (e *Executor) markup(page cdp.Page, selector string) (string, error) {
	if selector == "" {
		return page.Content()
	}
	el, err := page.Query(selector)
	if err != nil {
		return "", err
	}
	if el == nil {
		return "", elementNotFound(selector)
	}
	return el.OuterHTML()
}

func (e *Executor) text(page cdp.Page, selector string) (string, error) {
	if selector == "" {
		body, err := page.Query("body")
		if err != nil || body == nil {
			return "", err
		}
		return body.InnerText()
	}

	elements, err := page.QueryAll(selector)
	if err != nil {
		return "", err
	}
	texts := make([]string, 0, len(elements))
	for _, el := range elements {
		t, err := el.InnerText()
		if err != nil {
			return "", fmt.Errorf("failed to read element text: %w", err)
		}
		texts = append(texts, t)
	}
	return strings.Join(texts, "\n"), nil
}

func (e *Executor) links(page cdp.Page, selector string) ([]string, error) {
	doc, err := page.Content()
	if err != nil {
		return nil, err
	}
	return extractLinks(doc, page.URL(), selector)
}

func (e *Executor) clean(page cdp.Page, selector string) (string, error) {
	raw, err := e.markup(page, selector)
	if err != nil {
		return "", err
	}
	cleaned, err := cleanHTML(raw, e.opts.CleanMaxLength)
	if err != nil {
		return "", err
	}
	return cleaned.HTML, nil
}
