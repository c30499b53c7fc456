package browser

import (
	"time"
)

const (
	// DefaultNavigationTimeout bounds every navigation.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultWaitUntil is the load state navigation waits for.
	DefaultWaitUntil = "networkidle"

	// DefaultCleanMaxLength caps the output of the clean content kind.
	DefaultCleanMaxLength = 50000
)

// Options configures an Executor.
type Options struct {
	NavigationTimeout time.Duration
	WaitUntil         string

	// CleanMaxLength caps cleaned markup. Zero means DefaultCleanMaxLength.
	CleanMaxLength int
}

// ContentKind selects what Content returns.
type ContentKind string

const (
	// KindHTML returns the serialized document, or an element's outer HTML.
	KindHTML ContentKind = "html"

	// KindMarkup is an alias for KindHTML.
	KindMarkup ContentKind = "markup"

	// KindText returns rendered text.
	KindText ContentKind = "text"

	// KindLinks returns absolute link targets.
	KindLinks ContentKind = "links"

	// KindClean returns markup with scripts, styles and noise attributes removed.
	KindClean ContentKind = "clean"
)

// ContentRequest selects page content.
type ContentRequest struct {
	Kind     ContentKind
	Selector string
}

// ContentResult holds the requested content. Links is set only for KindLinks.
type ContentResult struct {
	Kind  ContentKind
	Text  string
	Links []string
}

// Interaction actions.
const (
	ActionClick  = "click"
	ActionFill   = "fill"
	ActionType   = "type"
	ActionSelect = "select"
	ActionHover  = "hover"
	ActionFocus  = "focus"
	ActionPress  = "press"
)

// InteractRequest describes one element interaction. Value is required for
// fill, type, select and press.
type InteractRequest struct {
	Action   string
	Selector string
	Value    string
}

// ScreenshotRequest describes a capture. A selector captures only that element.
type ScreenshotRequest struct {
	FullPage bool
	Selector string
}

// PageInfo summarizes the page operations currently target.
type PageInfo struct {
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	IsSecure bool    `json:"is_secure"`
	Favicon  *string `json:"favicon"`
}

// TabInfo describes one open tab.
type TabInfo struct {
	Index    int    `json:"index"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Active   bool   `json:"active"`
	Explicit bool   `json:"explicit"`
}

// TabList is every open tab plus the resolver's pick.
type TabList struct {
	Tabs       []TabInfo `json:"tabs"`
	ActiveTier string    `json:"active_tier"`
}
