package scraper

import (
	"context"
	"errors"
	"time"

	"jsvensson/matdeals/config"
	"jsvensson/matdeals/logger"
	apperrors "jsvensson/matdeals/pkg/errors"
)

// Session wraps the shared browser page with the navigation and scrolling
// primitives the extraction paths need. All stores reuse one session, so
// everything here runs strictly sequentially.
type Session struct {
	page Page
	cfg  *config.Config
	log  *logger.Logger
}

// Page is the subset of rod's page API the session relies on, kept narrow so
// tests can swap in a fake.
type Page interface {
	Navigate(url string, timeout time.Duration) error
	WaitIdle(timeout time.Duration) error
	Eval(js string, args ...interface{}) (interface{}, error)
	HTML() (string, error)
}

func NewSession(page Page, cfg *config.Config) *Session {
	return &Session{
		page: page,
		cfg:  cfg,
		log:  logger.ForBrowser(),
	}
}

// Navigate loads url and waits for the network to go quiet. A navigation
// timeout is a warning, not a failure: offer content often renders before
// slow third-party requests finish, so extraction proceeds with whatever
// loaded. Other navigation errors are returned.
func (s *Session) Navigate(url string) error {
	if err := s.page.Navigate(url, s.cfg.NavigationTimeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Warn().Str("url", url).Msg("navigation timed out, continuing with partial page")
		} else {
			return apperrors.NewNavigation("", "failed to navigate to "+url, err)
		}
	}
	s.WaitIdle()
	return nil
}

// WaitIdle waits for network idle, logging but tolerating a timeout.
func (s *Session) WaitIdle() {
	if err := s.page.WaitIdle(s.cfg.NetworkIdleTimeout); err != nil {
		s.log.Debug().Err(err).Msg("network idle wait timed out")
	}
}

// Settle gives lazily rendered content a moment to appear after scrolling.
func (s *Session) Settle() {
	time.Sleep(s.cfg.SettleWait)
}

// ScrollToBottom scrolls the page down stepwise so lazy-loaded offers render.
// It re-measures the document height each step and stops early once the
// viewport reaches the bottom.
func (s *Session) ScrollToBottom(stepPx int, stepDelay time.Duration, maxSteps int) {
	pos := 0
	for i := 0; i < maxSteps; i++ {
		pos += stepPx
		if _, err := s.page.Eval(`(y) => window.scrollTo(0, y)`, pos); err != nil {
			s.log.Debug().Err(err).Msg("scroll step failed")
			return
		}
		time.Sleep(stepDelay)

		height, err := s.evalInt(`() => document.body.scrollHeight`)
		if err != nil {
			continue
		}
		view, err := s.evalInt(`() => window.innerHeight + window.scrollY`)
		if err != nil {
			continue
		}
		if view >= height {
			return
		}
	}
}

// VisibleText returns the page's rendered text for the DOM fallback path.
func (s *Session) VisibleText() (string, error) {
	v, err := s.page.Eval(`() => document.body.innerText`)
	if err != nil {
		return "", apperrors.NewParsing("", "failed to read page text", err)
	}
	text, ok := v.(string)
	if !ok {
		return "", apperrors.NewParsing("", "page text is not a string", nil)
	}
	return text, nil
}

// HTML returns the page's current markup.
func (s *Session) HTML() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", apperrors.NewParsing("", "failed to read page HTML", err)
	}
	return html, nil
}

func (s *Session) evalInt(js string) (int, error) {
	v, err := s.page.Eval(js)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	}
	return 0, apperrors.NewParsing("", "unexpected eval result type", nil)
}
