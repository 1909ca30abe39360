package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// FileSource reads the document from disk.
type FileSource struct {
	path     string
	maxBytes int64
	html     *htmlConverter
	logger   *slog.Logger
}

// NewFile creates a FileSource for cfg.Path.
func NewFile(cfg Config) *FileSource {
	cfg.defaults()
	return &FileSource{
		path:     cfg.Path,
		maxBytes: cfg.MaxBytes,
		html:     newHTMLConverter(),
		logger:   cfg.Logger,
	}
}

// Fetch returns the file content, converted to markdown if it is an HTML page.
func (s *FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("source: stat %s: %w", s.path, err)
	}
	if info.Size() > s.maxBytes {
		return "", fmt.Errorf("%w: %s is %d bytes (max %d)", ErrTooLarge, s.path, info.Size(), s.maxBytes)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("source: read %s: %w", s.path, err)
	}
	s.logger.Info("source: read file", "path", s.path, "bytes", len(data))

	if !isHTML("", data) {
		return string(data), nil
	}
	md, err := s.html.markdown(string(data), "")
	if err != nil {
		return "", fmt.Errorf("source: html to markdown: %w", err)
	}
	return md, nil
}
