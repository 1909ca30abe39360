// CLAUDE:SUMMARY Fuzzy title search over a parsed category tree (categories, subcategories, links) using sahilm/fuzzy.
// Package search ranks category, subcategory and link titles against a query.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/hazyhaar/linkdex/linklist"
)

// DefaultLimit caps the number of hits when Find is given limit <= 0.
const DefaultLimit = 20

// Kind tells which level of the tree an entry comes from.
type Kind string

const (
	KindCategory    Kind = "category"
	KindSubcategory Kind = "subcategory"
	KindLink        Kind = "link"
)

// Entry is one searchable title with its position in the tree.
type Entry struct {
	Kind        Kind   `json:"kind"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
}

// Hit is a ranked match.
type Hit struct {
	Entry
	Score   int   `json:"score"`
	Matched []int `json:"matched,omitempty"`
}

// Index is an immutable flattened view of a tree. Safe for concurrent use.
type Index struct {
	entries []Entry
}

// NewIndex flattens categories in document order.
func NewIndex(categories []linklist.Category) *Index {
	var entries []Entry
	for _, c := range categories {
		entries = append(entries, Entry{Kind: KindCategory, Category: c.Title, Title: c.Title})
		for _, s := range c.Subcategories {
			entries = append(entries, Entry{Kind: KindSubcategory, Category: c.Title, Subcategory: s.Title, Title: s.Title})
			for _, l := range s.Links {
				entries = append(entries, Entry{
					Kind:        KindLink,
					Category:    c.Title,
					Subcategory: s.Title,
					Title:       l.Title,
					URL:         l.URL,
				})
			}
		}
	}
	return &Index{entries: entries}
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Find returns up to limit hits for query, best first. An empty query has no hits.
func (ix *Index) Find(query string, limit int) []Hit {
	return ix.find(ix.entries, query, limit)
}

// FindKind is Find restricted to one level of the tree.
func (ix *Index) FindKind(kind Kind, query string, limit int) []Hit {
	var subset []Entry
	for _, e := range ix.entries {
		if e.Kind == kind {
			subset = append(subset, e)
		}
	}
	return ix.find(subset, query, limit)
}

func (ix *Index) find(entries []Entry, query string, limit int) []Hit {
	query = strings.TrimSpace(query)
	if query == "" || len(entries) == 0 {
		return []Hit{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), titles(entries))
	if len(matches) > limit {
		matches = matches[:limit]
	}
	hits := make([]Hit, len(matches))
	for i, m := range matches {
		hits[i] = Hit{Entry: entries[m.Index], Score: m.Score, Matched: m.MatchedIndexes}
	}
	return hits
}

// titles adapts entries to fuzzy.Source.
type titles []Entry

func (t titles) String(i int) string { return strings.ToLower(t[i].Title) }
func (t titles) Len() int            { return len(t) }
