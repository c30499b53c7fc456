package browser

import (
	"fmt"
)

// Cleanup steps, in the order CloseAll visits them.
const (
	StepPage    = "page"
	StepContext = "context"
	StepBrowser = "browser"
	StepDriver  = "driver"
)

// StepResult is the outcome of one CloseAll step.
type StepResult struct {
	Step string

	// Skipped is set when there was nothing to release.
	Skipped bool
	Err     error
}

func (r StepResult) String() string {
	switch {
	case r.Skipped:
		return r.Step + ": skipped"
	case r.Err != nil:
		return fmt.Sprintf("%s: %v", r.Step, r.Err)
	default:
		return r.Step + ": closed"
	}
}

// CloseAll releases the explicit page, the default context, the browser link
// and the driver, in that order. Every step runs even if an earlier one
// failed. Failures are logged and returned, never raised. Afterwards the
// Session is unconnected, so calling CloseAll again only yields skipped steps.
func (s *Session) CloseAll() []StepResult {
	page := s.pages.Explicit()
	bctx := s.conn.context
	b := s.conn.browser
	dialed := s.conn.dialed

	results := []StepResult{
		s.runStep(StepPage, page != nil && !page.IsClosed(), func() error { return page.Close() }),
		s.runStep(StepContext, bctx != nil, func() error { return bctx.Close() }),
		s.runStep(StepBrowser, b != nil, func() error { return b.Close() }),
		s.runStep(StepDriver, dialed, s.driver.Stop),
	}

	s.pages.Clear()
	s.conn.reset()
	return results
}

func (s *Session) runStep(step string, present bool, closeFn func() error) StepResult {
	if !present {
		return StepResult{Step: step, Skipped: true}
	}
	err := safeClose(closeFn)
	if err != nil {
		s.logger.Warnf("Cleanup step %s failed: %v", step, err)
	} else {
		s.logger.Debugf("Cleanup step %s done", step)
	}
	return StepResult{Step: step, Err: err}
}

// safeClose turns a panic inside a driver close call into an error so the
// remaining steps still run.
func safeClose(closeFn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during close: %v", r)
		}
	}()
	return closeFn()
}

// Failed returns the results whose step reported an error.
func Failed(results []StepResult) []StepResult {
	var failed []StepResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
