package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hazyhaar/linkdex/internal/fsutil"
)

// cacheMeta is stored next to the cached body as <path>.meta.json.
type cacheMeta struct {
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
	Hash         string    `json:"sha256"`
	FetchedAt    time.Time `json:"fetched_at"`
}

type cacheEntry struct {
	body []byte
	meta cacheMeta
}

// cache keeps the last fetched body on disk.
type cache struct {
	path string
}

func (c *cache) metaPath() string { return c.path + ".meta.json" }

// load returns nil, nil when nothing is cached yet.
func (c *cache) load() (*cacheEntry, error) {
	body, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var meta cacheMeta
	raw, err := os.ReadFile(c.metaPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Body without validators: usable, but no conditional headers.
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("decode cache meta: %w", err)
		}
	}
	return &cacheEntry{body: body, meta: meta}, nil
}

func (c *cache) store(body []byte, meta cacheMeta) error {
	if meta.FetchedAt.IsZero() {
		meta.FetchedAt = time.Now().UTC()
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(c.path, body, 0o644); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(c.metaPath(), raw, 0o644)
}
