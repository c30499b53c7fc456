package browser

import (
	"context"

	"github.com/entrhq/cdp-bridge/pkg/logging"
)

// Session is the bridge's whole view of the remote browser. It is owned by
// one caller and is not safe for concurrent use.
type Session struct {
	driver   Driver
	conn     *Connection
	resolver *Resolver
	pages    *PageState
	logger   *logging.Logger
}

// NewSession creates an unconnected Session.
func NewSession(driver Driver, opts ConnectionOptions, logger *logging.Logger) *Session {
	s := &Session{
		driver:   driver,
		conn:     NewConnection(driver, opts, logger),
		resolver: NewResolver(logger),
		pages:    NewPageState(logger),
		logger:   logger,
	}
	// The explicit page belongs to the link it was opened on.
	s.conn.onDrop = s.pages.Clear
	return s
}

// Connection returns the session's connection.
func (s *Session) Connection() *Connection {
	return s.conn
}

// EnsureConnected dials the browser if needed.
func (s *Session) EnsureConnected(ctx context.Context) (Browser, Context, error) {
	return s.conn.EnsureConnected(ctx)
}

// Pages returns every open page across all contexts.
func (s *Session) Pages(ctx context.Context) ([]Page, error) {
	b, _, err := s.conn.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}
	return Pages(b), nil
}

// Resolve picks the active page among the browser's open pages, ignoring the
// explicit page. The boolean is false when no page exists.
func (s *Session) Resolve(ctx context.Context) (Resolution, bool, error) {
	b, _, err := s.conn.EnsureConnected(ctx)
	if err != nil {
		return Resolution{}, false, err
	}
	res, ok := s.resolver.Resolve(ctx, b)
	return res, ok, nil
}

// ActivePage returns the resolver's pick, or nil when no page exists.
func (s *Session) ActivePage(ctx context.Context) (Page, error) {
	res, ok, err := s.Resolve(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return res.Page, nil
}

// EffectivePage returns the page operations should act on: the explicit page
// while it is open, else the active page. It fails with ErrNoPage when
// neither exists.
func (s *Session) EffectivePage(ctx context.Context) (Page, error) {
	return s.pages.EffectivePage(ctx, s.ActivePage)
}

// Explicit returns the page opened by the last navigation, or nil.
func (s *Session) Explicit() Page {
	return s.pages.Explicit()
}

// NewExplicitPage opens a page in the default context and makes it the
// explicit page, closing the previous one.
func (s *Session) NewExplicitPage(ctx context.Context) (Page, error) {
	_, bctx, err := s.conn.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}
	page, err := bctx.NewPage()
	if err != nil {
		return nil, err
	}
	s.pages.SetExplicit(page)
	return page, nil
}

// SetExplicit replaces the explicit page.
func (s *Session) SetExplicit(page Page) {
	s.pages.SetExplicit(page)
}
