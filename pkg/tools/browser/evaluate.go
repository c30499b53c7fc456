package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	cdp "github.com/entrhq/cdp-bridge/pkg/browser"
)

// Evaluate runs script in the effective page and returns its result. The
// script must be a function or an expression producing the value. args, when
// given, are passed to the function as a single array argument.
func (e *Executor) Evaluate(ctx context.Context, script string, args []any) (any, error) {
	const op = "evaluate"
	if strings.TrimSpace(script) == "" {
		return nil, cdp.Wrap(op, "", invalidArgument("script is required"))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	page, err := e.effectivePage(ctx, op, "")
	if err != nil {
		return nil, err
	}

	var result any
	if args == nil {
		result, err = page.Evaluate(script)
	} else {
		result, err = page.Evaluate(script, args)
	}
	if err != nil {
		e.logger.Errorf("Error executing JavaScript on %s: %v", page.URL(), err)
		return nil, cdp.Wrap(op, page.URL(), fmt.Errorf("%w: %w", cdp.ErrEvaluation, err))
	}
	return result, nil
}

// FormatResult renders an evaluation result for display. Undefined and null
// results render as "undefined".
func FormatResult(result any) string {
	if result == nil {
		return "undefined"
	}
	if s, ok := result.(string); ok {
		return s
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}
