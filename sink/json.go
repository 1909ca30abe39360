package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hazyhaar/linkdex/internal/fsutil"
	"github.com/hazyhaar/linkdex/linklist"
)

// JSONFile writes the tree as a JSON array with a 4-space indent.
type JSONFile struct {
	path   string
	logger *slog.Logger
}

// NewJSONFile returns a JSON sink writing to path.
func NewJSONFile(path string, logger *slog.Logger) *JSONFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONFile{path: path, logger: logger}
}

// Path returns the output file.
func (s *JSONFile) Path() string { return s.path }

// Save encodes categories and atomically replaces the file.
func (s *JSONFile) Save(ctx context.Context, categories []linklist.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeJSON(categories)
	if err != nil {
		return fmt.Errorf("sink: encode json: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("sink: write %s: %w", s.path, err)
	}
	s.logger.Info("sink: saved", "format", "json", "path", s.path, "bytes", len(data))
	return nil
}

// Load decodes the file. A missing file yields an error matching both
// ErrEmpty and os.ErrNotExist.
func (s *JSONFile) Load(ctx context.Context) ([]linklist.Category, error) {
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
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("sink: decode %s: %w", s.path, err)
	}
	return normalize(categories), nil
}

// Close is a no-op.
func (s *JSONFile) Close() error { return nil }

// EncodeJSON renders categories the way JSONFile stores them: 4-space indent,
// [] for empty sequences, no HTML escaping, trailing newline.
func EncodeJSON(categories []linklist.Category) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalize(categories)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
