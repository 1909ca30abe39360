// CLAUDE:SUMMARY chi HTTP API over the service: health, categories, stats, search, parse and refresh.
package linkdex

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/linkdex/kit"
	"github.com/hazyhaar/linkdex/shield"
)

// maxParseBody bounds POST /api/parse when the source has no MaxBytes.
const maxParseBody = 10 << 20

// Handler returns the HTTP API.
//
//	GET  /health
//	GET  /api/categories
//	GET  /api/stats
//	GET  /api/search?q=&limit=&kind=
//	POST /api/parse?descriptions=1   (body: markdown)
//	POST /api/refresh
func (s *Service) Handler() http.Handler {
	eps := s.endpoints()
	limit := s.cfg.Source.MaxBytes
	if limit <= 0 {
		limit = maxParseBody
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	for _, mw := range shield.APIStack(limit) {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 200, s.Categories())
		})

		r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
			serve(w, r, eps.stats, nil)
		})

		r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			serve(w, r, eps.search, &SearchRequest{
				Query: q.Get("q"),
				Limit: queryInt(r, "limit", 0),
				Kind:  q.Get("kind"),
			})
		})

		r.Post("/parse", func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("read body: %w", err))
				return
			}
			descriptions, _ := strconv.ParseBool(r.URL.Query().Get("descriptions"))
			serve(w, r, eps.parse, &ParseRequest{Markdown: string(body), Descriptions: descriptions})
		})

		r.Post("/refresh", func(w http.ResponseWriter, r *http.Request) {
			serve(w, r, eps.refresh, nil)
		})
	})

	return r
}

// serve invokes ep with the request id attached and writes its JSON response.
func serve(w http.ResponseWriter, r *http.Request, ep kit.Endpoint, req any) {
	ctx := kit.WithTransport(r.Context(), "http")
	ctx = kit.WithRequestID(ctx, middleware.GetReqID(r.Context()))
	resp, err := ep(ctx, req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, 200, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
