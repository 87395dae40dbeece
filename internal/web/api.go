package web

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/renderinc/catalog-search/internal/backdrop"
	"github.com/renderinc/catalog-search/internal/catalog"
	"github.com/renderinc/catalog-search/internal/query"
	"github.com/renderinc/catalog-search/internal/search"
)

type errorResponse struct {
	Error string `json:"error"`
}

type QueryResponse struct {
	query.Result
	Summary string `json:"summary"`
}

type SuggestResponse struct {
	Query       string              `json:"query"`
	Suggestions []search.Suggestion `json:"suggestions"`
	Count       int                 `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// loadCatalog resolves the {name} path value to its config and items
func (s *Server) loadCatalog(w http.ResponseWriter, r *http.Request) (query.Config, []catalog.Item, bool) {
	name := r.PathValue("name")
	cfg, ok := s.configs[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown catalog "+strconv.Quote(name))
		return query.Config{}, nil, false
	}

	items, err := s.source.List(r.Context(), name)
	if err != nil {
		s.logger.Error("list catalog", zap.String("catalog", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return query.Config{}, nil, false
	}
	return cfg, items, true
}

// runQuery decodes, sanitizes and runs the request's query
func (s *Server) runQuery(w http.ResponseWriter, r *http.Request) (query.Config, query.Result, bool) {
	cfg, items, ok := s.loadCatalog(w, r)
	if !ok {
		return cfg, query.Result{}, false
	}

	q, err := DecodeQuery(r.URL.Query(), cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return cfg, query.Result{}, false
	}

	start := time.Now()
	res := query.Run(items, cfg, query.Sanitize(q, cfg, items))
	queryDuration.WithLabelValues(cfg.Name).Observe(time.Since(start).Seconds())
	catalogQueries.WithLabelValues(cfg.Name).Inc()
	if res.NoResults {
		noResultQueries.WithLabelValues(cfg.Name).Inc()
	}
	return cfg, res, true
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	cfg, res, ok := s.runQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Result: res, Summary: Summarize(cfg, res)})
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	cfg, items, ok := s.loadCatalog(w, r)
	if !ok {
		return
	}

	q, err := DecodeQuery(r.URL.Query(), cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, query.Facets(items, cfg, query.Sanitize(q, cfg, items)))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, ok := s.configs[name]; !ok {
		writeError(w, http.StatusNotFound, "unknown catalog "+strconv.Quote(name))
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	it, err := s.source.Get(r.Context(), name, id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		s.logger.Error("get item", zap.String("catalog", name), zap.Int("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}

	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleCatalogs(w http.ResponseWriter, r *http.Request) {
	configs := make([]query.Config, 0, len(s.configs))
	for _, name := range s.catalogNames() {
		configs = append(configs, s.configs[name])
	}
	writeJSON(w, http.StatusOK, configs)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if s.idx == nil {
		writeError(w, http.StatusServiceUnavailable, "suggestions not available")
		return
	}

	term := r.URL.Query().Get("q")
	name := r.URL.Query().Get("catalog")
	if name != "" {
		if _, ok := s.configs[name]; !ok {
			writeError(w, http.StatusNotFound, "unknown catalog "+strconv.Quote(name))
			return
		}
	}

	limit := s.opts.SuggestLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= query.MaxPageSize {
			limit = l
		}
	}

	suggestions, err := s.idx.Suggest(term, name, limit)
	if err != nil {
		s.logger.Error("suggest", zap.String("term", term), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "suggest failed")
		return
	}
	suggestCount.Inc()

	writeJSON(w, http.StatusOK, SuggestResponse{Query: term, Suggestions: suggestions, Count: len(suggestions)})
}

// sceneRand seeds from the "seed" parameter when given, for reproducible scenes
func sceneRand(r *http.Request) *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	if v := r.URL.Query().Get("seed"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			seed = n
		}
	}
	return rand.New(rand.NewPCG(seed, seed>>1))
}

func (s *Server) handleBackdrop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, backdrop.NewScene(sceneRand(r)))
}
