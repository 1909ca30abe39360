package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/linkdex/internal/fsutil"
	"github.com/hazyhaar/linkdex/linklist"
)

// YAMLFile writes the tree as a YAML sequence.
type YAMLFile struct {
	path   string
	logger *slog.Logger
}

// NewYAMLFile returns a YAML sink writing to path.
func NewYAMLFile(path string, logger *slog.Logger) *YAMLFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &YAMLFile{path: path, logger: logger}
}

// Save encodes categories and atomically replaces the file.
func (s *YAMLFile) Save(ctx context.Context, categories []linklist.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(normalize(categories)); err != nil {
		return fmt.Errorf("sink: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("sink: encode yaml: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("sink: write %s: %w", s.path, err)
	}
	s.logger.Info("sink: saved", "format", "yaml", "path", s.path, "bytes", buf.Len())
	return nil
}

// Load decodes the file; a missing file matches ErrEmpty.
func (s *YAMLFile) Load(ctx context.Context) ([]linklist.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrEmpty, err)
	}
	if err != nil {
		return nil, fmt.Errorf("sink: read %s: %w", s.path, err)
	}
	var categories []linklist.Category
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("sink: decode %s: %w", s.path, err)
	}
	return normalize(categories), nil
}

// Close is a no-op.
func (s *YAMLFile) Close() error { return nil }
