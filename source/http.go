// CLAUDE:SUMMARY HTTP document source: single GET, redirect vetting, conditional GET against a local cache, HTML normalization.
package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// HTTPSource fetches the document with one GET request.
type HTTPSource struct {
	client *http.Client
	cfg    Config
	cache  *cache
	html   *htmlConverter
	logger *slog.Logger
}

// NewHTTP creates an HTTPSource. Redirects are re-validated with
// cfg.URLValidator and capped at 5 hops.
func NewHTTP(cfg Config) *HTTPSource {
	cfg.defaults()
	validate := cfg.URLValidator
	s := &HTTPSource{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				if err := validate(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked: %w", err)
				}
				return nil
			},
		},
		cfg:    cfg,
		html:   newHTMLConverter(),
		logger: cfg.Logger,
	}
	if cfg.CachePath != "" {
		s.cache = &cache{path: cfg.CachePath}
	}
	return s
}

// Fetch retrieves the document. Any status other than 200 is a *FetchError,
// except 304 when a cached copy exists, which serves the cached copy.
func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	log := s.logger.With("url", s.cfg.URL)

	if err := s.cfg.URLValidator(s.cfg.URL); err != nil {
		return "", s.fail(0, fmt.Errorf("url blocked: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return "", s.fail(0, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/markdown, text/plain, text/html;q=0.9, */*;q=0.5")

	cached := s.loadCache(log)
	if cached != nil {
		if cached.meta.ETag != "" {
			req.Header.Set("If-None-Match", cached.meta.ETag)
		}
		if cached.meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.meta.LastModified)
		}
	}

	log.Info("source: fetching")
	resp, err := s.client.Do(req)
	if err != nil {
		return "", s.fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		log.Info("source: not modified, using cache", "cache", s.cache.path)
		return s.normalize(cached.body, cached.meta.ContentType)
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn("source: unexpected status", "status", resp.StatusCode)
		return "", s.fail(resp.StatusCode, nil)
	}

	body, err := readLimited(resp.Body, s.cfg.MaxBytes)
	if err != nil {
		return "", s.fail(0, err)
	}
	contentType := resp.Header.Get("Content-Type")
	log.Info("source: fetched", "bytes", len(body), "content_type", contentType)

	if s.cache != nil {
		meta := cacheMeta{
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			ContentType:  contentType,
			Hash:         fmt.Sprintf("%x", sha256.Sum256(body)),
		}
		if err := s.cache.store(body, meta); err != nil {
			log.Warn("source: cache write failed", "cache", s.cache.path, "error", err)
		}
	}

	return s.normalize(body, contentType)
}

func (s *HTTPSource) loadCache(log *slog.Logger) *cacheEntry {
	if s.cache == nil {
		return nil
	}
	entry, err := s.cache.load()
	if err != nil {
		log.Warn("source: cache unreadable, ignoring", "cache", s.cache.path, "error", err)
		return nil
	}
	return entry
}

func (s *HTTPSource) normalize(body []byte, contentType string) (string, error) {
	if !isHTML(contentType, body) {
		return string(body), nil
	}
	md, err := s.html.markdown(string(body), s.cfg.URL)
	if err != nil {
		return "", s.fail(0, fmt.Errorf("html to markdown: %w", err))
	}
	return md, nil
}

func (s *HTTPSource) fail(status int, err error) *FetchError {
	return &FetchError{URL: s.cfg.URL, StatusCode: status, Err: err}
}

// readLimited reads at most limit bytes and fails with ErrTooLarge beyond that.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}
