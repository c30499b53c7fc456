package browser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// CleanedHTML is markup reduced to its semantic structure.
type CleanedHTML struct {
	HTML      string
	Truncated bool
}

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

var (
	droppedTags = setOf("script", "style", "noscript", "template", "iframe", "embed", "object", "svg", "canvas")

	blockTags = setOf(
		"html", "body", "div", "p", "section", "article", "header", "footer", "nav", "main", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "dl", "dt", "dd",
		"table", "thead", "tbody", "tr", "td", "th", "form", "fieldset", "blockquote", "pre",
	)

	voidTags = setOf("area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta", "param", "source", "track", "wbr")

	// keptAttrs lists attributes kept on every element.
	keptAttrs = setOf("id", "class", "role", "name", "title", "aria-label", "aria-describedby", "aria-expanded", "aria-hidden")

	// tagAttrs lists attributes kept only on specific elements.
	tagAttrs = map[string]map[string]bool{
		"a":        setOf("href", "target"),
		"img":      setOf("src", "alt"),
		"input":    setOf("type", "placeholder", "value", "checked", "disabled"),
		"textarea": setOf("placeholder", "disabled"),
		"select":   setOf("multiple", "disabled"),
		"option":   setOf("value", "selected"),
		"button":   setOf("type", "disabled"),
		"form":     setOf("action", "method"),
		"label":    setOf("for"),
		"table":    setOf("summary"),
	}
)

// cleanHTML strips scripts, styles, comments and presentational attributes
// from rawHTML, keeping the element structure and the attributes useful for
// building selectors. Output stops once maxLength characters are written.
func cleanHTML(rawHTML string, maxLength int) (*CleanedHTML, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &cleaner{max: maxLength}
	c.walk(doc, 0)

	return &CleanedHTML{
		HTML:      strings.TrimSpace(c.out.String()),
		Truncated: c.truncated,
	}, nil
}

type cleaner struct {
	out       strings.Builder
	written   int
	max       int
	truncated bool
}

func (c *cleaner) full() bool {
	if c.written >= c.max {
		c.truncated = true
	}
	return c.truncated
}

func (c *cleaner) emit(s string) {
	c.out.WriteString(s)
	c.written += len(s)
}

func (c *cleaner) walk(n *html.Node, depth int) {
	if c.full() {
		return
	}

	switch n.Type {
	case html.TextNode:
		c.text(n.Data)
	case html.ElementNode:
		c.element(n, depth)
	case html.DocumentNode:
		c.children(n, depth)
	}
}

func (c *cleaner) children(n *html.Node, depth int) {
	for child := n.FirstChild; child != nil && !c.truncated; child = child.NextSibling {
		c.walk(child, depth)
	}
}

func (c *cleaner) text(data string) {
	text := strings.Join(strings.Fields(data), " ")
	if text == "" {
		return
	}
	remaining := c.max - c.written
	if remaining <= 0 {
		c.truncated = true
		return
	}
	if len(text) > remaining {
		cut := remaining
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		c.emit(text[:cut] + "...")
		c.truncated = true
		return
	}
	c.emit(text)
}

func (c *cleaner) element(n *html.Node, depth int) {
	tag := strings.ToLower(n.Data)
	if droppedTags[tag] {
		return
	}
	if tag == "head" {
		return
	}

	block := blockTags[tag]
	if block && depth > 0 {
		c.emit("\n" + strings.Repeat("  ", depth))
	}

	var open strings.Builder
	open.WriteString("<" + tag)
	for _, a := range n.Attr {
		if keepAttr(tag, a.Key) {
			fmt.Fprintf(&open, ` %s="%s"`, strings.ToLower(a.Key), html.EscapeString(a.Val))
		}
	}
	open.WriteString(">")
	c.emit(open.String())

	if voidTags[tag] {
		return
	}

	c.children(n, depth+1)

	if block && hasBlockChild(n) {
		c.emit("\n" + strings.Repeat("  ", depth))
	}
	c.emit("</" + tag + ">")
}

func hasBlockChild(n *html.Node) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && blockTags[strings.ToLower(child.Data)] {
			return true
		}
	}
	return false
}

func keepAttr(tag, attr string) bool {
	attr = strings.ToLower(attr)
	if keptAttrs[attr] || strings.HasPrefix(attr, "data-") {
		return true
	}
	return tagAttrs[tag][attr]
}
