// CLAUDE:SUMMARY Headless Chrome document source: Rod + stealth render, outerHTML capture, markdown normalization.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// BrowserSource renders the page in Chrome and converts the resulting DOM.
// It connects to cfg.RemoteURL when set, otherwise launches a local
// headless Chrome for the duration of one Fetch.
type BrowserSource struct {
	cfg    Config
	html   *htmlConverter
	logger *slog.Logger
}

// NewBrowser creates a BrowserSource.
func NewBrowser(cfg Config) *BrowserSource {
	cfg.defaults()
	return &BrowserSource{
		cfg:    cfg,
		html:   newHTMLConverter(),
		logger: cfg.Logger,
	}
}

// Fetch navigates to the URL, waits for load and returns the page as markdown.
func (s *BrowserSource) Fetch(ctx context.Context) (string, error) {
	log := s.logger.With("url", s.cfg.URL)

	if err := s.cfg.URLValidator(s.cfg.URL); err != nil {
		return "", s.fail(fmt.Errorf("url blocked: %w", err))
	}

	b, release, err := s.connect()
	if err != nil {
		return "", s.fail(err)
	}
	defer release()

	page, err := stealth.Page(b)
	if err != nil {
		return "", s.fail(fmt.Errorf("create tab: %w", err))
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	log.Info("source: rendering")
	if err := page.Context(navCtx).Navigate(s.cfg.URL); err != nil {
		return "", s.fail(fmt.Errorf("navigate: %w", err))
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.Warn("source: wait load timeout", "error", err)
	}

	res, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", s.fail(fmt.Errorf("get DOM: %w", err))
	}
	dom := res.Value.Str()
	if int64(len(dom)) > s.cfg.MaxBytes {
		return "", s.fail(fmt.Errorf("%w (%d bytes)", ErrTooLarge, s.cfg.MaxBytes))
	}
	log.Info("source: rendered", "bytes", len(dom))

	md, err := s.html.markdown(dom, s.cfg.URL)
	if err != nil {
		return "", s.fail(fmt.Errorf("html to markdown: %w", err))
	}
	return md, nil
}

// connect returns a connected browser and a function releasing it.
func (s *BrowserSource) connect() (*rod.Browser, func(), error) {
	wsURL := s.cfg.RemoteURL
	var l *launcher.Launcher

	if wsURL == "" {
		l = launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, nil, fmt.Errorf("launch chrome: %w", err)
		}
		wsURL = u
		s.logger.Debug("source: launched local chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, nil, fmt.Errorf("connect chrome: %w", err)
	}

	// A remote Chrome is shared; only a browser launched here is shut down.
	release := func() {
		if l == nil {
			return
		}
		if err := b.Close(); err != nil {
			s.logger.Debug("source: close browser", "error", err)
		}
		l.Kill()
	}
	return b, release, nil
}

func (s *BrowserSource) fail(err error) *FetchError {
	return &FetchError{URL: s.cfg.URL, Err: err}
}
