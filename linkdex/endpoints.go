package linkdex

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/linkdex/kit"
	"github.com/hazyhaar/linkdex/linklist"
	"github.com/hazyhaar/linkdex/search"
)

// ParseRequest carries markdown to parse.
type ParseRequest struct {
	Markdown     string `json:"markdown"`
	Descriptions bool   `json:"descriptions"`
}

// ParseResponse is the parsed tree of a ParseRequest.
type ParseResponse struct {
	Categories []linklist.Category `json:"categories"`
	Stats      linklist.Stats      `json:"stats"`
}

// SearchRequest queries the snapshot. Kind restricts hits to one level.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
	Kind  string `json:"kind,omitempty"`
}

// SearchResponse lists ranked hits.
type SearchResponse struct {
	Query string       `json:"query"`
	Hits  []search.Hit `json:"hits"`
}

// StatsResponse reports the snapshot size and the last run.
type StatsResponse struct {
	Stats   linklist.Stats `json:"stats"`
	LastRun *Report        `json:"last_run,omitempty"`
}

// endpoints are the operations shared by the HTTP and MCP surfaces.
type endpoints struct {
	parse   kit.Endpoint
	search  kit.Endpoint
	stats   kit.Endpoint
	refresh kit.Endpoint
}

func (s *Service) endpoints() endpoints {
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.Logging(s.logger, name))(ep)
	}
	return endpoints{
		parse:   wrap("parse", s.parseEndpoint),
		search:  wrap("search", s.searchEndpoint),
		stats:   wrap("stats", s.statsEndpoint),
		refresh: wrap("refresh", s.refreshEndpoint),
	}
}

func (s *Service) parseEndpoint(_ context.Context, req any) (any, error) {
	r := req.(*ParseRequest)
	categories := s.Parse(r.Markdown, r.Descriptions)
	return &ParseResponse{Categories: categories, Stats: linklist.Count(categories)}, nil
}

func (s *Service) searchEndpoint(_ context.Context, req any) (any, error) {
	r := req.(*SearchRequest)
	var hits []search.Hit
	switch kind := search.Kind(strings.ToLower(r.Kind)); kind {
	case "":
		hits = s.Search(r.Query, r.Limit)
	case search.KindCategory, search.KindSubcategory, search.KindLink:
		s.mu.RLock()
		ix := s.index
		s.mu.RUnlock()
		hits = ix.FindKind(kind, r.Query, r.Limit)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, r.Kind)
	}
	return &SearchResponse{Query: r.Query, Hits: hits}, nil
}

func (s *Service) statsEndpoint(_ context.Context, _ any) (any, error) {
	return &StatsResponse{Stats: s.Stats(), LastRun: s.LastRun()}, nil
}

func (s *Service) refreshEndpoint(ctx context.Context, _ any) (any, error) {
	return s.Run(ctx)
}
