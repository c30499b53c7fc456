package browser

import (
	"context"

	"github.com/entrhq/cdp-bridge/pkg/logging"
)

// Tier identifies which rule of the resolution chain selected a page.
type Tier int

const (
	TierNone Tier = iota

	// TierFocused: visible, focused, not an extension. First match wins.
	TierFocused

	// TierTitled: non-empty title, neither extension nor internal. First match wins.
	TierTitled

	// TierRecent: neither extension nor internal. Latest page wins.
	TierRecent

	// TierLastResort: any page at all. Latest page wins.
	TierLastResort
)

func (t Tier) String() string {
	switch t {
	case TierFocused:
		return "focused"
	case TierTitled:
		return "titled"
	case TierRecent:
		return "recent"
	case TierLastResort:
		return "last-resort"
	default:
		return "none"
	}
}

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	Page Page
	Tier Tier

	// Index is the page's position across all contexts, in enumeration order.
	Index int
}

// Resolver picks the tab a user is most likely looking at. It never opens,
// closes or navigates pages.
type Resolver struct {
	logger *logging.Logger
}

// NewResolver creates a Resolver.
func NewResolver(logger *logging.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Pages flattens every context's pages, contexts first, in creation order.
func Pages(b Browser) []Page {
	var pages []Page
	for _, c := range b.Contexts() {
		pages = append(pages, c.Pages()...)
	}
	return pages
}

// Resolve applies the tier chain to the browser's current pages. It reports
// false only when no page exists. Probe failures disqualify the probed page
// for that tier and never abort resolution.
func (r *Resolver) Resolve(ctx context.Context, b Browser) (Resolution, bool) {
	return r.ResolvePages(ctx, Pages(b))
}

// ResolvePages applies the tier chain to an already enumerated page list.
func (r *Resolver) ResolvePages(ctx context.Context, pages []Page) (Resolution, bool) {
	if len(pages) == 0 {
		return Resolution{}, false
	}

	for i, p := range pages {
		if IsExtensionURL(p.URL()) {
			continue
		}
		if r.probeBool(ctx, p, VisibilityScript) && r.probeBool(ctx, p, FocusScript) {
			return r.found(p, TierFocused, i), true
		}
	}

	for i, p := range pages {
		if !IsRegularURL(p.URL()) {
			continue
		}
		if r.probeTitle(ctx, p) != "" {
			return r.found(p, TierTitled, i), true
		}
	}

	for i := len(pages) - 1; i >= 0; i-- {
		if IsRegularURL(pages[i].URL()) {
			return r.found(pages[i], TierRecent, i), true
		}
	}

	last := len(pages) - 1
	return r.found(pages[last], TierLastResort, last), true
}

func (r *Resolver) found(p Page, tier Tier, index int) Resolution {
	r.logger.Debugf("Resolved active page %d (%s) via %s tier", index, p.URL(), tier)
	return Resolution{Page: p, Tier: tier, Index: index}
}

func (r *Resolver) probeBool(ctx context.Context, p Page, script string) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	v, err := p.Evaluate(script)
	if err != nil {
		r.logger.Debugf("Probe %q failed on %s: %v", script, p.URL(), err)
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (r *Resolver) probeTitle(ctx context.Context, p Page) string {
	if err := ctx.Err(); err != nil {
		return ""
	}
	title, err := p.Title()
	if err != nil {
		r.logger.Debugf("Title probe failed on %s: %v", p.URL(), err)
		return ""
	}
	return title
}
