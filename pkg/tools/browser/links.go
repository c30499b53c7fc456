package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractLinks returns the absolute href of every anchor in doc, resolved
// against the document's <base> or pageURL. With a selector only matches that
// are themselves anchors count. Anchors without href and javascript: links
// are skipped.
func extractLinks(doc, pageURL, selector string) ([]string, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	base, _ := url.Parse(pageURL)
	if href, ok := d.Find("base[href]").First().Attr("href"); ok {
		if b, err := resolveURL(base, href); err == nil {
			base = b
		}
	}

	anchors := d.Find("a")
	if selector != "" {
		anchors = d.Find(selector).Filter("a")
	}

	links := make([]string, 0, anchors.Length())
	anchors.Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		abs, err := resolveURL(base, href)
		if err != nil {
			return
		}
		links = append(links, abs.String())
	})
	return links, nil
}

func resolveURL(base *url.URL, href string) (*url.URL, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return ref, nil
	}
	return base.ResolveReference(ref), nil
}
