package browser

import (
	"context"
	"time"
)

// Probe scripts evaluated by the Resolver. Fakes match on these values.
const (
	VisibilityScript = "() => document.visibilityState === 'visible'"
	FocusScript      = "() => document.hasFocus()"
)

// Driver starts the protocol client and dials remote browsers.
type Driver interface {
	// Connect attaches to the browser serving endpoint.
	Connect(ctx context.Context, endpoint string, timeout time.Duration) (Browser, error)

	// Stop releases the protocol client. Stopping an idle driver is a no-op.
	Stop() error
}

// Browser is a live link to the remote browser process.
type Browser interface {
	// Contexts lists contexts in creation order.
	Contexts() []Context
	NewContext(opts ContextOptions) (Context, error)
	Close() error
	IsConnected() bool
}

// ContextOptions configures contexts the bridge creates itself.
type ContextOptions struct {
	IgnoreHTTPSErrors bool
}

// Context groups pages that share storage.
type Context interface {
	// Pages lists pages in creation order.
	Pages() []Page
	NewPage() (Page, error)
	Close() error
}

// GotoOptions controls a single navigation.
type GotoOptions struct {
	WaitUntil string
	Timeout   time.Duration
}

// Page is one tab.
type Page interface {
	URL() string
	Title() (string, error)
	Goto(url string, opts GotoOptions) error
	Content() (string, error)
	Evaluate(script string, args ...any) (any, error)

	// Query returns the first match, or nil when nothing matches.
	Query(selector string) (Element, error)
	QueryAll(selector string) ([]Element, error)

	Screenshot(fullPage bool) ([]byte, error)
	Close() error
	IsClosed() bool
}

// Element is a handle to a node inside a Page.
type Element interface {
	InnerText() (string, error)
	OuterHTML() (string, error)
	Click() error
	Fill(value string) error
	SelectOption(value string) error
	Hover() error
	Focus() error
	Press(key string) error
	Screenshot() ([]byte, error)
}
