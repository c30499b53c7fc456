package browser

import (
	"context"
	"encoding/base64"

	cdp "github.com/entrhq/cdp-bridge/pkg/browser"
)

// Screenshot captures the effective page, or one element of it, and returns
// the PNG base64-encoded.
func (e *Executor) Screenshot(ctx context.Context, req ScreenshotRequest) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	const op = "screenshot"
	page, err := e.effectivePage(ctx, op, req.Selector)
	if err != nil {
		return "", err
	}

	var data []byte
	if req.Selector != "" {
		el, qerr := page.Query(req.Selector)
		if qerr != nil {
			return "", cdp.Wrap(op, req.Selector, qerr)
		}
		if el == nil {
			return "", cdp.Wrap(op, req.Selector, elementNotFound(req.Selector))
		}
		data, err = el.Screenshot()
	} else {
		data, err = page.Screenshot(req.FullPage)
	}
	if err != nil {
		return "", cdp.Wrap(op, req.Selector, err)
	}

	scope := "viewport"
	switch {
	case req.Selector != "":
		scope = req.Selector
	case req.FullPage:
		scope = "full page"
	}
	e.logger.Debugf("Screenshot captured: %s (%d bytes)", scope, len(data))
	return base64.StdEncoding.EncodeToString(data), nil
}
