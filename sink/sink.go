// CLAUDE:SUMMARY Result sink abstraction (json, yaml, sqlite), run-id context and format selection.
// Package sink persists the parsed category tree.
//
// Every sink overwrites: after a successful Save the destination holds exactly
// the categories of that call, and a failed Save leaves the previous result
// in place.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/linkdex/linklist"
)

// DefaultPath is the JSON result file, relative to the working directory.
const DefaultPath = "awesome.json"

// ErrUnknownFormat is returned by New for an unsupported Config.Format.
var ErrUnknownFormat = errors.New("sink: unknown format")

// ErrEmpty is returned by Load when nothing has been saved yet.
var ErrEmpty = errors.New("sink: no stored result")

// ErrInvalidRunID is returned by sinks that record run ids when the id is
// not "run_" followed by a UUID.
var ErrInvalidRunID = errors.New("sink: invalid run id")

// Sink persists one complete result.
type Sink interface {
	Save(ctx context.Context, categories []linklist.Category) error
}

// Loader reads the last saved result back.
type Loader interface {
	Load(ctx context.Context) ([]linklist.Category, error)
}

// Config selects and configures a Sink.
type Config struct {
	// Format: "json" (default), "yaml" or "sqlite".
	Format string `json:"format" yaml:"format"`

	// Path of the output file or database. Default: DefaultPath, or
	// linkdex.yaml / linkdex.db for the other formats.
	Path string `json:"path" yaml:"path"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Format == "" {
		c.Format = "json"
	}
	c.Format = strings.ToLower(c.Format)
	if c.Path == "" {
		switch c.Format {
		case "yaml":
			c.Path = "awesome.yaml"
		case "sqlite":
			c.Path = "awesome.db"
		default:
			c.Path = DefaultPath
		}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// New builds the sink for cfg.Format. The sqlite sink opens its database
// here; callers should Close it (every returned sink implements io.Closer).
func New(cfg Config) (Sink, error) {
	cfg.defaults()
	switch cfg.Format {
	case "json":
		return NewJSONFile(cfg.Path, cfg.Logger), nil
	case "yaml", "yml":
		return NewYAMLFile(cfg.Path, cfg.Logger), nil
	case "sqlite":
		return OpenSQLite(cfg.Path, cfg.Logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, cfg.Format)
	}
}

type runIDKey struct{}

// WithRunID attaches the run identifier recorded by sinks that keep one.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom returns the run identifier carried by ctx, or "".
func RunIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(runIDKey{}).(string)
	return v
}

// normalize returns a copy of categories in which no sequence is nil, so
// empty sequences encode as [] rather than null.
func normalize(categories []linklist.Category) []linklist.Category {
	out := make([]linklist.Category, len(categories))
	for i, c := range categories {
		subs := make([]linklist.Subcategory, len(c.Subcategories))
		for j, s := range c.Subcategories {
			links := s.Links
			if links == nil {
				links = []linklist.Link{}
			}
			subs[j] = linklist.Subcategory{Title: s.Title, Links: links}
		}
		out[i] = linklist.Category{Title: c.Title, Subcategories: subs}
	}
	return out
}
