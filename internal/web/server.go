package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/renderinc/catalog-search/internal/catalog"
	"github.com/renderinc/catalog-search/internal/query"
	"github.com/renderinc/catalog-search/internal/search"
)

//go:embed templates/*.html
var templatesFS embed.FS

// counter is implemented by stores that can report their size
type counter interface {
	Count(ctx context.Context) (int, error)
}

type Server struct {
	source    catalog.Source
	configs   map[string]query.Config
	idx       *search.Index // nil disables suggestions
	logger    *zap.Logger
	templates *template.Template
	opts      Options

	stopOnce sync.Once
	stopping chan struct{} // closed to end open backdrop streams
}

// Options tunes optional server behavior
type Options struct {
	SuggestLimit     int
	BackdropInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.SuggestLimit <= 0 {
		o.SuggestLimit = 8
	}
	if o.BackdropInterval <= 0 {
		o.BackdropInterval = 50 * time.Millisecond
	}
	return o
}

func NewServer(src catalog.Source, configs map[string]query.Config, idx *search.Index, logger *zap.Logger, opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		source:    src,
		configs:   configs,
		idx:       idx,
		logger:    logger,
		templates: tmpl,
		opts:      opts.withDefaults(),
		stopping:  make(chan struct{}),
	}, nil
}

// StopStreams ends every open backdrop stream
func (s *Server) StopStreams(context.Context) error {
	s.stopOnce.Do(func() { close(s.stopping) })
	return nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /fragments/catalogs/{name}", s.handleResultsFragment)

	mux.HandleFunc("GET /api/catalogs", s.handleCatalogs)
	mux.HandleFunc("GET /api/catalogs/{name}", s.handleQuery)
	mux.HandleFunc("GET /api/catalogs/{name}/facets", s.handleFacets)
	mux.HandleFunc("GET /api/catalogs/{name}/items/{id}", s.handleGetItem)
	mux.HandleFunc("GET /api/suggest", s.handleSuggest)
	mux.HandleFunc("GET /api/backdrop", s.handleBackdrop)
	mux.HandleFunc("GET /api/backdrop/stream", s.handleBackdropStream)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return requestLogger(s.logger, mux)
}

func (s *Server) catalogNames() []string {
	names := make([]string, 0, len(s.configs))
	for name := range s.configs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Catalogs":    s.catalogNames(),
		"Suggestions": s.idx != nil,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("render template", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":   "ok",
		"catalogs": s.catalogNames(),
	}

	if c, ok := s.source.(counter); ok {
		n, err := c.Count(r.Context())
		if err != nil {
			s.logger.Warn("count items", zap.Error(err))
			status["status"] = "degraded"
		}
		status["items_in_store"] = n
	}
	if s.idx != nil {
		n, _ := s.idx.Count()
		status["items_in_index"] = n
	}

	writeJSON(w, http.StatusOK, status)
}
