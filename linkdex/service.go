// CLAUDE:SUMMARY Service composing source, parser and sink; runs fetch→parse→save and serves the last result snapshot.
// Package linkdex turns a links-list document into a persisted category tree
// and serves the result over HTTP and MCP.
//
// A run is strictly sequential: one fetch, one parse, one save. A fetch
// failure aborts before parsing; a save failure leaves the previous result.
// The last successful result is kept in memory as the snapshot served by
// Categories, Search and Stats.
package linkdex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/linkdex/idgen"
	"github.com/hazyhaar/linkdex/linklist"
	"github.com/hazyhaar/linkdex/search"
	"github.com/hazyhaar/linkdex/sink"
	"github.com/hazyhaar/linkdex/source"
)

// Report describes one completed run.
type Report struct {
	RunID    string         `json:"run_id"`
	Stats    linklist.Stats `json:"stats"`
	Duration time.Duration  `json:"duration_ns"`
	SavedAt  time.Time      `json:"saved_at"`
}

// Service is the linkdex engine.
type Service struct {
	cfg    *Config
	src    source.Source
	parser *linklist.Parser
	sink   sink.Sink
	logger *slog.Logger

	runMu sync.Mutex

	mu         sync.RWMutex
	categories []linklist.Category
	index      *search.Index
	last       *Report
}

// Option overrides a component built from Config.
type Option func(*Service)

// WithSource replaces the configured document source.
func WithSource(src source.Source) Option { return func(s *Service) { s.src = src } }

// WithSink replaces the configured result sink.
func WithSink(sk sink.Sink) Option { return func(s *Service) { s.sink = sk } }

// New builds the source, parser and sink described by cfg.
func New(cfg *Config, logger *slog.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		cfg:        cfg,
		logger:     logger,
		categories: []linklist.Category{},
		index:      search.NewIndex(nil),
	}
	for _, o := range opts {
		o(s)
	}

	s.parser = linklist.New(s.parserConfig(cfg.Parser.Descriptions))

	if s.src == nil {
		scfg := cfg.Source
		if scfg.Logger == nil {
			scfg.Logger = logger
		}
		src, err := source.New(scfg)
		if err != nil {
			return nil, fmt.Errorf("linkdex: source: %w", err)
		}
		s.src = src
	}

	if s.sink == nil {
		kcfg := cfg.Sink
		if kcfg.Logger == nil {
			kcfg.Logger = logger
		}
		sk, err := sink.New(kcfg)
		if err != nil {
			return nil, fmt.Errorf("linkdex: sink: %w", err)
		}
		s.sink = sk
	}
	return s, nil
}

func (s *Service) parserConfig(descriptions bool) linklist.Config {
	return linklist.Config{
		Fallback:     s.cfg.Parser.Fallback,
		Descriptions: descriptions,
		Logger:       s.logger,
	}
}

// Run fetches, parses and saves the document, then publishes the result.
// Concurrent calls are serialized.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	runID := idgen.NewRunID()
	log := s.logger.With("run_id", runID)
	log.Info("linkdex: run started")

	text, err := s.src.Fetch(ctx)
	if err != nil {
		log.Error("linkdex: fetch failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	categories := s.parser.Parse(text)
	if base := s.cfg.Parser.FragmentBase; base != "" {
		categories = linklist.ResolveFragments(categories, base)
	}

	if err := s.sink.Save(sink.WithRunID(ctx, runID), categories); err != nil {
		log.Error("linkdex: save failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrSave, err)
	}

	report := &Report{
		RunID:    runID,
		Stats:    linklist.Count(categories),
		Duration: time.Since(start),
		SavedAt:  time.Now().UTC(),
	}
	s.publish(categories, report)
	log.Info("linkdex: run complete",
		"categories", report.Stats.Categories,
		"subcategories", report.Stats.Subcategories,
		"links", report.Stats.Links,
		"duration", report.Duration,
	)
	return report, nil
}

// Parse parses text without touching the source, the sink or the snapshot.
func (s *Service) Parse(text string, descriptions bool) []linklist.Category {
	if descriptions == s.cfg.Parser.Descriptions {
		return s.parser.Parse(text)
	}
	return linklist.New(s.parserConfig(descriptions)).Parse(text)
}

// Restore seeds the snapshot from the sink when it can load. Nothing saved
// yet is not an error.
func (s *Service) Restore(ctx context.Context) error {
	loader, ok := s.sink.(sink.Loader)
	if !ok {
		return nil
	}
	categories, err := loader.Load(ctx)
	if errors.Is(err, sink.ErrEmpty) {
		s.logger.Info("linkdex: nothing to restore")
		return nil
	}
	if err != nil {
		return fmt.Errorf("linkdex: restore: %w", err)
	}
	s.publish(categories, nil)
	s.logger.Info("linkdex: restored", "categories", len(categories))
	return nil
}

func (s *Service) publish(categories []linklist.Category, report *Report) {
	ix := search.NewIndex(categories)
	s.mu.Lock()
	s.categories = categories
	s.index = ix
	if report != nil {
		s.last = report
	}
	s.mu.Unlock()
}

// Categories returns the current snapshot. Callers must not modify it.
func (s *Service) Categories() []linklist.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories
}

// Search ranks snapshot titles against query.
func (s *Service) Search(query string, limit int) []search.Hit {
	s.mu.RLock()
	ix := s.index
	s.mu.RUnlock()
	return ix.Find(query, limit)
}

// Stats counts the snapshot.
func (s *Service) Stats() linklist.Stats {
	return linklist.Count(s.Categories())
}

// LastRun returns the report of the last successful run in this process, or nil.
func (s *Service) LastRun() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Close releases the sink.
func (s *Service) Close() error {
	if c, ok := s.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
