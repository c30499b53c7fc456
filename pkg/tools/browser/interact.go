package browser

import (
	"context"
	"fmt"
	"strings"

	cdp "github.com/entrhq/cdp-bridge/pkg/browser"
)

// valueRequired lists actions that cannot run without a value.
var valueRequired = map[string]bool{
	ActionFill:   true,
	ActionType:   true,
	ActionSelect: true,
	ActionPress:  true,
}

// Interact performs one action on the first element matching the selector
// and returns a confirmation message.
func (e *Executor) Interact(ctx context.Context, req InteractRequest) (string, error) {
	const op = "interact_with_page"
	action := strings.ToLower(strings.TrimSpace(req.Action))

	if err := validateInteraction(action, req); err != nil {
		return "", cdp.Wrap(op, req.Selector, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	page, err := e.effectivePage(ctx, op, req.Selector)
	if err != nil {
		return "", err
	}

	el, err := page.Query(req.Selector)
	if err != nil {
		return "", cdp.Wrap(op, req.Selector, err)
	}
	if el == nil {
		return "", cdp.Wrap(op, req.Selector, elementNotFound(req.Selector))
	}

	if err := perform(el, action, req.Value); err != nil {
		e.logger.Errorf("Error performing %s on %s: %v", action, req.Selector, err)
		return "", cdp.Wrap(op, req.Selector, fmt.Errorf("%s failed: %w", action, err))
	}

	e.logger.Infof("Performed %s on %s", action, req.Selector)
	return fmt.Sprintf("Successfully performed %s on %s", action, req.Selector), nil
}

func validateInteraction(action string, req InteractRequest) error {
	switch action {
	case ActionClick, ActionFill, ActionType, ActionSelect, ActionHover, ActionFocus, ActionPress:
	default:
		return invalidArgument("invalid action %q (must be 'click', 'fill', 'type', 'select', 'hover', 'focus' or 'press')", req.Action)
	}
	if strings.TrimSpace(req.Selector) == "" {
		return invalidArgument("selector is required")
	}
	if valueRequired[action] && req.Value == "" {
		return invalidArgument("a value is required for the %s action", action)
	}
	return nil
}

func perform(el cdp.Element, action, value string) error {
	switch action {
	case ActionClick:
		return el.Click()
	case ActionFill, ActionType:
		return el.Fill(value)
	case ActionSelect:
		return el.SelectOption(value)
	case ActionHover:
		return el.Hover()
	case ActionFocus:
		return el.Focus()
	case ActionPress:
		return el.Press(value)
	}
	return invalidArgument("invalid action %q", action)
}
