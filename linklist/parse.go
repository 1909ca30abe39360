// CLAUDE:SUMMARY Single-pass parser turning a links-list markdown document into categories, subcategories and links.
// Package linklist parses curated "links list" documents (the awesome-list
// readme layout) into an ordered Category → Subcategory → Link tree.
//
// The parser never fails: lines it cannot attach are dropped and the scan
// continues. Indentation is ignored; every line is classified on its own
// trimmed text plus the current category and subcategory.
//
// Usage:
//
//	p := linklist.New(linklist.Config{})
//	categories := p.Parse(markdown)
package linklist

import (
	"log/slog"
	"strings"
)

// Parser converts links-list markdown into categories.
type Parser struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Parser with the given configuration.
func New(cfg Config) *Parser {
	cfg.defaults()
	return &Parser{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Parse scans text once, top to bottom, and returns the categories in order
// of first appearance. The result is never nil.
func (p *Parser) Parse(text string) []Category {
	lines := strings.Split(text, "\n")
	p.logger.Debug("linklist: parsing", "lines", len(lines))

	opts := classifyOptions{descriptions: p.cfg.Descriptions}
	st := newParseState(p.cfg.Fallback)

	for i, raw := range lines {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		c := classify(line, opts)

		switch c.kind {
		case kindContents:
			p.logger.Debug("linklist: skipping contents heading", "line", i+1)

		case kindCategory:
			p.logger.Debug("linklist: category detected", "line", i+1, "title", c.title)
			st.startCategory(c.title)

		case kindBulletLink:
			if st.appendToCurrent(c.link) {
				continue
			}
			p.logger.Debug("linklist: subcategory detected", "line", i+1, "title", c.link.Title)
			st.addSubcategory(newSubcategory(c.link.Title, c.link))

		case kindLabel:
			p.logger.Debug("linklist: subcategory detected", "line", i+1, "title", c.title)
			st.addSubcategory(newSubcategory(c.title))

		case kindInline:
			if !st.attachInline(c.link) {
				p.logger.Debug("linklist: dropping unattached link", "line", i+1, "url", c.link.URL)
			}
		}
	}

	out := st.finish()
	stats := Count(out)
	p.logger.Info("linklist: parse complete",
		"lines", len(lines),
		"categories", stats.Categories,
		"subcategories", stats.Subcategories,
		"links", stats.Links,
	)
	return out
}

// Parse parses text with a default Parser.
func Parse(text string) []Category {
	return New(Config{}).Parse(text)
}

// parseState is the mutable state of one Parse call.
type parseState struct {
	fallback string
	out      []Category
	current  *Category
	sub      int // index into current.Subcategories, -1 when none
}

func newParseState(fallback string) *parseState {
	return &parseState{
		fallback: fallback,
		out:      []Category{},
		sub:      -1,
	}
}

// startCategory finalizes the current category and opens a new one.
func (s *parseState) startCategory(title string) {
	s.flush()
	c := newCategory(title)
	s.current = &c
	s.sub = -1
}

// ensureCategory returns the current category, opening the fallback
// category first when no heading has been seen yet.
func (s *parseState) ensureCategory() *Category {
	if s.current == nil {
		c := newCategory(s.fallback)
		s.current = &c
		s.sub = -1
	}
	return s.current
}

// addSubcategory appends sub to the current category and makes it current.
func (s *parseState) addSubcategory(sub Subcategory) {
	c := s.ensureCategory()
	c.Subcategories = append(c.Subcategories, sub)
	s.sub = len(c.Subcategories) - 1
}

// appendToCurrent adds l to the current subcategory, if there is one.
func (s *parseState) appendToCurrent(l Link) bool {
	if s.current == nil || s.sub < 0 {
		return false
	}
	sub := &s.current.Subcategories[s.sub]
	sub.Links = append(sub.Links, l)
	return true
}

// attachInline adds l to the current subcategory, else to the last
// subcategory of the current category. It never creates a category.
func (s *parseState) attachInline(l Link) bool {
	if s.appendToCurrent(l) {
		return true
	}
	if s.current == nil || len(s.current.Subcategories) == 0 {
		return false
	}
	last := &s.current.Subcategories[len(s.current.Subcategories)-1]
	last.Links = append(last.Links, l)
	return true
}

func (s *parseState) flush() {
	if s.current != nil {
		s.out = append(s.out, *s.current)
		s.current = nil
	}
	s.sub = -1
}

func (s *parseState) finish() []Category {
	s.flush()
	return s.out
}
