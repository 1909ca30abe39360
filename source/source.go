// CLAUDE:SUMMARY Document source abstraction (http, file, browser) with FetchError and config defaults.
// Package source retrieves the raw text of the links-list document.
//
// Three modes are supported:
//   - "http": a single GET with conditional-request cache (default).
//   - "file": a local file, for offline runs.
//   - "browser": a headless Chrome render via Rod, for pages that only exist as HTML.
//
// HTML payloads are normalized to markdown before they are returned, so the
// parser always receives markdown.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultURL is the canonical awesome-list readme.
const DefaultURL = "https://raw.githubusercontent.com/sindresorhus/awesome/main/readme.md"

// ErrTooLarge is returned when a document exceeds Config.MaxBytes.
var ErrTooLarge = errors.New("source: document exceeds size limit")

// ErrUnknownMode is returned by New for an unsupported Config.Mode.
var ErrUnknownMode = errors.New("source: unknown mode")

// Source supplies the document text.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// FetchError reports a failed retrieval. StatusCode is the HTTP status when
// the server answered, 0 when the request never completed.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source: fetch %s: http %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("source: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Config configures a Source.
type Config struct {
	// Mode selects the implementation: "http" (default), "file" or "browser".
	Mode string `json:"mode" yaml:"mode"`

	// URL of the document (http and browser modes). Default: DefaultURL.
	URL string `json:"url" yaml:"url"`

	// Path of the document (file mode).
	Path string `json:"path" yaml:"path"`

	// CachePath keeps the last fetched body for conditional GET. Empty disables caching.
	CachePath string `json:"cache_path" yaml:"cache_path"`

	// Timeout bounds one fetch. Default: 30s.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxBytes caps the document size. Default: 10 MB.
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes"`

	// UserAgent sent with requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// RemoteURL is the DevTools WebSocket URL of an external Chrome (browser mode).
	// Empty launches a local headless Chrome.
	RemoteURL string `json:"remote_url" yaml:"remote_url"`

	// URLValidator vets the target and every redirect. Default: ValidateURL.
	URLValidator func(string) error `json:"-" yaml:"-"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Mode == "" {
		c.Mode = "http"
	}
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "linkdex/1.0"
	}
	if c.URLValidator == nil {
		c.URLValidator = ValidateURL
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// New builds the Source selected by cfg.Mode.
func New(cfg Config) (Source, error) {
	cfg.defaults()
	switch cfg.Mode {
	case "http":
		return NewHTTP(cfg), nil
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("source: file mode requires a path")
		}
		return NewFile(cfg), nil
	case "browser":
		return NewBrowser(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}
