package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	cdp "github.com/entrhq/cdp-bridge/pkg/browser"
	"github.com/entrhq/cdp-bridge/pkg/logging"
)

// Executor runs browser operations against the page a Session resolves.
//
// Tool calls may arrive concurrently, while a Session must only be used by one
// flow at a time, so every exported method holds the executor lock for its
// whole duration.
type Executor struct {
	mu      sync.Mutex
	session *cdp.Session
	opts    Options
	logger  *logging.Logger
}

// NewExecutor creates an Executor. Zero option values take their defaults.
func NewExecutor(session *cdp.Session, opts Options, logger *logging.Logger) *Executor {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = DefaultNavigationTimeout
	}
	if opts.WaitUntil == "" {
		opts.WaitUntil = DefaultWaitUntil
	}
	if opts.CleanMaxLength <= 0 {
		opts.CleanMaxLength = DefaultCleanMaxLength
	}
	return &Executor{
		session: session,
		opts:    opts,
		logger:  logger,
	}
}

// effectivePage returns the page to act on, annotating failures with op.
func (e *Executor) effectivePage(ctx context.Context, op, target string) (cdp.Page, error) {
	page, err := e.session.EffectivePage(ctx)
	if err != nil {
		return nil, cdp.Wrap(op, target, err)
	}
	return page, nil
}

// navigationTimeout returns the configured timeout, shortened to ctx's deadline.
func (e *Executor) navigationTimeout(ctx context.Context) time.Duration {
	timeout := e.opts.NavigationTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

// Shutdown releases every browser resource. It is safe to call repeatedly.
func (e *Executor) Shutdown() []cdp.StepResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.logger.Infof("Shutting down browser session")
	results := e.session.CloseAll()
	for _, r := range cdp.Failed(results) {
		e.logger.Warnf("Shutdown: %s", r)
	}
	return results
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", cdp.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func elementNotFound(selector string) error {
	return fmt.Errorf("%w: no element matches selector %q", cdp.ErrElementNotFound, selector)
}
