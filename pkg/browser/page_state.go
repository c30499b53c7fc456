package browser

import (
	"context"

	"github.com/entrhq/cdp-bridge/pkg/logging"
)

// PageState tracks the page opened by the most recent explicit navigation.
type PageState struct {
	explicit Page
	logger   *logging.Logger
}

// NewPageState creates an empty PageState.
func NewPageState(logger *logging.Logger) *PageState {
	return &PageState{logger: logger}
}

// Explicit returns the explicit page, or nil.
func (s *PageState) Explicit() Page {
	return s.explicit
}

// EffectivePage returns the explicit page while it is open, otherwise the
// page chosen by fallback. A nil page from fallback yields ErrNoPage.
func (s *PageState) EffectivePage(ctx context.Context, fallback func(context.Context) (Page, error)) (Page, error) {
	if s.explicit != nil {
		if !s.explicit.IsClosed() {
			return s.explicit, nil
		}
		s.logger.Debugf("Explicit page %s was closed, falling back to active page", s.explicit.URL())
		s.explicit = nil
	}

	page, err := fallback(ctx)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrNoPage
	}
	return page, nil
}

// SetExplicit closes the previous explicit page, then records page. A close
// failure is logged and does not stop the replacement.
func (s *PageState) SetExplicit(page Page) {
	if prev := s.explicit; prev != nil && prev != page {
		if err := prev.Close(); err != nil {
			s.logger.Debugf("Closing previous explicit page: %v", err)
		}
	}
	s.explicit = page
}

// Clear drops the explicit page without closing it.
func (s *PageState) Clear() {
	s.explicit = nil
}
