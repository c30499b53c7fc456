package browser

import (
	"context"
	"net/url"
	"time"

	"github.com/entrhq/cdp-bridge/pkg/logging"
)

const (
	// DefaultEndpoint is the DevTools address of a locally started browser.
	DefaultEndpoint = "http://localhost:9222"

	DefaultConnectTimeout = 30 * time.Second
)

// ConnectionOptions configures how a Connection dials the remote browser.
type ConnectionOptions struct {
	Endpoint          string
	Timeout           time.Duration
	IgnoreHTTPSErrors bool
}

// Connection owns the single link between a Session and the remote browser.
type Connection struct {
	driver Driver
	opts   ConnectionOptions
	logger *logging.Logger

	browser Browser
	context Context

	// dialed is set once the driver has been asked to connect, so teardown
	// knows whether the driver may hold resources.
	dialed bool

	// onDrop runs when a dropped link is discarded before redialing.
	onDrop func()
}

// NewConnection creates an unconnected Connection. Nothing is dialed until
// EnsureConnected is called.
func NewConnection(driver Driver, opts ConnectionOptions, logger *logging.Logger) *Connection {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultConnectTimeout
	}
	return &Connection{
		driver: driver,
		opts:   opts,
		logger: logger,
	}
}

// Endpoint returns the DevTools address this connection dials.
func (c *Connection) Endpoint() string {
	return c.opts.Endpoint
}

// EnsureConnected returns the live browser and its default context, dialing
// only when there is no cached link or the cached link has dropped.
//
// The default context is the first context the browser already exposes. When
// there is none, a new one is created that ignores certificate errors if the
// connection was configured to.
func (c *Connection) EnsureConnected(ctx context.Context) (Browser, Context, error) {
	if c.browser != nil {
		if c.browser.IsConnected() {
			return c.browser, c.context, nil
		}
		c.logger.Warnf("Browser at %s disconnected, reconnecting", c.opts.Endpoint)
		c.drop()
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, &ConnectionError{Endpoint: c.opts.Endpoint, Err: err}
	}

	c.logger.Infof("Connecting to browser at %s", c.opts.Endpoint)
	c.dialed = true
	b, err := c.driver.Connect(ctx, c.opts.Endpoint, c.opts.Timeout)
	if err != nil {
		c.logger.Errorf("Connection to %s failed: %v", c.opts.Endpoint, err)
		return nil, nil, &ConnectionError{Endpoint: c.opts.Endpoint, Err: err}
	}

	bctx, err := defaultContext(b, c.opts.IgnoreHTTPSErrors)
	if err != nil {
		if closeErr := b.Close(); closeErr != nil {
			c.logger.Debugf("Closing browser after context failure: %v", closeErr)
		}
		return nil, nil, &ConnectionError{Endpoint: c.opts.Endpoint, Err: err}
	}

	c.browser = b
	c.context = bctx
	c.logger.Infof("Connected to browser at %s (%d existing contexts)", c.opts.Endpoint, len(b.Contexts()))
	return b, bctx, nil
}

func defaultContext(b Browser, ignoreHTTPSErrors bool) (Context, error) {
	if contexts := b.Contexts(); len(contexts) > 0 {
		return contexts[0], nil
	}
	return b.NewContext(ContextOptions{IgnoreHTTPSErrors: ignoreHTTPSErrors})
}

// drop releases a link that reported itself disconnected. Pages opened
// through it are unusable from here on.
func (c *Connection) drop() {
	if err := safeClose(c.browser.Close); err != nil {
		c.logger.Debugf("Closing dropped browser link: %v", err)
	}
	c.browser = nil
	c.context = nil
	if c.onDrop != nil {
		c.onDrop()
	}
}

// Connected reports whether a live link is cached.
func (c *Connection) Connected() bool {
	return c.browser != nil && c.browser.IsConnected()
}

// reset forgets every cached reference without closing anything.
func (c *Connection) reset() {
	c.browser = nil
	c.context = nil
	c.dialed = false
}

// DebugPort returns the value operators pass to --remote-debugging-port so
// that endpoint answers. Unparseable endpoints fall back to 9222.
func DebugPort(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "9222"
	}
	if p := u.Port(); p != "" {
		return p
	}
	switch u.Scheme {
	case "https", "wss":
		return "443"
	default:
		return "80"
	}
}
