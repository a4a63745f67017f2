package browser

import (
	"jsvensson/matdeals/config"
	"jsvensson/matdeals/logger"
	apperrors "jsvensson/matdeals/pkg/errors"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Service owns the headless browser process and the single page that every
// store in a run shares.
type Service struct {
	browser *rod.Browser
	page    *rod.Page
}

// New launches the browser and opens the run's page. Failure here aborts the
// whole run: without a session no store can be processed.
func New(cfg *config.Config) (*Service, error) {
	log := logger.ForBrowser()

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, apperrors.NewBrowser("failed to launch browser", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, apperrors.NewBrowser("failed to connect to browser", err)
	}
	log.Info().Str("control_url", controlURL).Msg("browser launched")

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		return nil, apperrors.NewBrowser("failed to open page", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.ViewportWidth,
		Height:            cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to set viewport")
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.Locale,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to set user agent")
	}

	return &Service{browser: b, page: page}, nil
}

// Page returns the run's shared page.
func (s *Service) Page() *rod.Page {
	return s.page
}

// Close tears down the page and kills the browser process.
func (s *Service) Close() {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
}
